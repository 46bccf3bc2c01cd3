package command

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

const (
	hostname   = "bravura.studio"
	workingDir = "/home/gorka/terminal"
)

func (r *Registry) registerBuiltins() {
	r.Register(&Command{Name: "ls", Handler: handleLs})
	r.Register(&Command{Name: "pwd", Handler: showText(workingDir)})
	r.Register(&Command{Name: "whoami", Handler: handleWhoami})
	r.Register(&Command{Name: "echo", Handler: handleEcho})
	r.Register(&Command{Name: "date", Handler: handleDate})
	r.Register(&Command{Name: "uname", Handler: handleUname})
	r.Register(&Command{Name: "uptime", Handler: handleUptime})
	r.Register(&Command{Name: "history", Handler: handleHistory})
	r.Register(&Command{Name: "hostname", Handler: showText(hostname)})
	r.Register(&Command{Name: "which", Handler: r.handleWhich})
}

func handleLs(env Env, args []string) Outcome {
	all := slices.Contains(args, "-a") || slices.Contains(args, "-la") || slices.Contains(args, "-al")
	long := slices.Contains(args, "-l") || slices.Contains(args, "-la") || slices.Contains(args, "-al")

	if long {
		var b strings.Builder
		b.WriteString("total 2048\n")
		fmt.Fprintf(&b, "drwxr-xr-x  21 root  wheel    672 %s .\n", env.Now.Format("Jan _2 2006"))
		b.WriteString("drwxr-xr-x   3 root  wheel     96 Jan  1 1970 ..\n")
		if all {
			b.WriteString(`drwx------   7 root  wheel    224 Dec 21 2012 .akashic-records/
-rw-------   1 root  wheel  13337 ??? ?? ???? .kundalini.lock
drwxr-xr-x  33 root  wheel   1056 Jul  7 7777 .chakra-system/
-rw-r--r--   1 root  wheel    108 Oct 13 0000 .third-eye.conf
`)
		}
		b.WriteString(`drwxr-xr-x  12 root  wheel    384 Apr  1 2023 atlantis-archives/
-rwxr-xr-x   1 root  wheel   4096 Jun 21 2012 hyperborea-map.gpg
-rw-r--r--   1 root  wheel   1111 Nov 11 1111 tantra-protocols.md
drwxr-xr-x   8 root  wheel    256 Mar  3 0333 asana-sequences/
drwxr-xr-x   5 root  wheel    160 Dec 25 0001 lemuria-fragments/
-rwxrwxrwx   1 root  wheel    432 Aug  8 1888 vimana-blueprints.enc
lrwxr-xr-x   1 root  wheel     42 Dec 31 1999 consciousness.ln -> /dev/null
-rw-r--r--   1 root  wheel   2012 Dec 21 2012 remote-viewing.sh`)
		return display(b.String())
	}

	if all {
		return display(`.akashic-records/    .kundalini.lock       .chakra-system/        .third-eye.conf
atlantis-archives/   hyperborea-map.gpg    tantra-protocols.md    asana-sequences/
lemuria-fragments/   vimana-blueprints.enc consciousness.ln       remote-viewing.sh`)
	}
	return display(`atlantis-archives/    hyperborea-map.gpg    tantra-protocols.md    asana-sequences/
lemuria-fragments/    vimana-blueprints.enc consciousness.ln       remote-viewing.sh`)
}

func handleWhoami(env Env, _ []string) Outcome {
	if env.City == "" || env.City == "UNKNOWN" {
		return display("guest")
	}
	return display("guest@" + strings.ToLower(strings.ReplaceAll(env.City, " ", "-")))
}

func handleEcho(_ Env, args []string) Outcome {
	return display(strings.Join(args, " "))
}

func handleDate(env Env, _ []string) Outcome {
	return display(env.Now.Format("Mon Jan _2 15:04:05 MST 2006"))
}

func handleUname(_ Env, args []string) Outcome {
	if slices.Contains(args, "-a") {
		return display("CRT-OS " + hostname + " 7.7.7 phosphor-x86_64 GNU/Consciousness")
	}
	return display("CRT-OS")
}

func handleUptime(env Env, _ []string) Outcome {
	up := env.Now.Sub(env.Booted).Truncate(time.Second)
	if env.Booted.IsZero() || up < 0 {
		up = 0
	}
	return display(fmt.Sprintf("%s up %s, 1 user, load average: 0.77, 0.77, 0.77", env.Now.Format("15:04:05"), up))
}

func handleHistory(env Env, _ []string) Outcome {
	var b strings.Builder
	for i, line := range env.History {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "%5d  %s", i+1, line)
	}
	return display(b.String())
}

func (r *Registry) handleWhich(_ Env, args []string) Outcome {
	if len(args) == 0 {
		return display("usage: which command")
	}
	cmd := r.Get(args[0])
	switch {
	case cmd == nil:
		return display(args[0] + " not found")
	case strings.HasPrefix(cmd.Name, Prefix):
		return display("/usr/share/terminal/slash" + cmd.Name)
	default:
		return display("/bin/" + cmd.Name)
	}
}
