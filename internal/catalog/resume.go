package catalog

import (
	"fmt"
	"strings"
)

type Contact struct {
	GitHub string `json:"github"`
	Studio string `json:"studio"`
	Email  string `json:"email"`
}

type Job struct {
	Title       string   `json:"title"`
	Company     string   `json:"company"`
	Period      string   `json:"period"`
	Description []string `json:"description"`
}

type Skills struct {
	Languages []string `json:"languages"`
	Frontend  []string `json:"frontend"`
	Backend   []string `json:"backend"`
	AIML      []string `json:"ai_ml"`
	Design    []string `json:"design"`
	Creative  []string `json:"creative"`
	Tools     []string `json:"tools"`
}

type ResumeProject struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Tech        []string `json:"tech"`
}

type Education struct {
	Degree      string `json:"degree"`
	Institution string `json:"institution"`
	Year        string `json:"year"`
	Focus       string `json:"focus,omitempty"`
}

// Resume is the structured resume served by GET /resume.
type Resume struct {
	Name       string          `json:"name"`
	Title      string          `json:"title"`
	Location   string          `json:"location"`
	Contact    Contact         `json:"contact"`
	Summary    string          `json:"summary"`
	Experience []Job           `json:"experience"`
	Skills     Skills          `json:"skills"`
	Projects   []ResumeProject `json:"projects"`
	Interests  []string        `json:"interests"`
	Education  []Education     `json:"education"`
	Training   []string        `json:"training"`
}

// ResumeFilename is the download name for the text rendition.
const ResumeFilename = "gorka_molero_resume.txt"

// Text renders the plain text resume.
func (r Resume) Text() string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s\n%s\n%s\n\n", strings.ToUpper(r.Name), r.Title, r.Location)
	fmt.Fprintf(&b, "CONTACT\nGitHub: %s\nStudio: %s\n\n", r.Contact.GitHub, r.Contact.Studio)
	fmt.Fprintf(&b, "SUMMARY\n%s\n\nEXPERIENCE\n", r.Summary)

	for _, job := range r.Experience {
		fmt.Fprintf(&b, "\n%s | %s\n%s\n", job.Title, job.Company, job.Period)
		for _, d := range job.Description {
			fmt.Fprintf(&b, "• %s\n", d)
		}
	}

	b.WriteString("\nSKILLS\n")
	fmt.Fprintf(&b, "Languages: %s\n", strings.Join(r.Skills.Languages, ", "))
	fmt.Fprintf(&b, "Frontend: %s\n", strings.Join(r.Skills.Frontend, ", "))
	fmt.Fprintf(&b, "Backend: %s\n", strings.Join(r.Skills.Backend, ", "))
	fmt.Fprintf(&b, "AI/ML: %s\n", strings.Join(r.Skills.AIML, ", "))
	fmt.Fprintf(&b, "Design: %s\n", strings.Join(r.Skills.Design, ", "))
	fmt.Fprintf(&b, "Creative: %s\n", strings.Join(r.Skills.Creative, ", "))
	fmt.Fprintf(&b, "Tools: %s\n", strings.Join(r.Skills.Tools, ", "))

	b.WriteString("\nPROJECTS\n")
	for _, p := range r.Projects {
		fmt.Fprintf(&b, "\n%s\n%s\n", p.Name, p.Description)
	}

	fmt.Fprintf(&b, "\nINTERESTS\n%s\n\nEDUCATION\n", strings.Join(r.Interests, ", "))
	for _, e := range r.Education {
		fmt.Fprintf(&b, "\n%s\n%s, %s\n", e.Degree, e.Institution, e.Year)
		if e.Focus != "" {
			fmt.Fprintf(&b, "%s\n", e.Focus)
		}
	}

	fmt.Fprintf(&b, "\nPROFESSIONAL DEVELOPMENT\n%s", strings.Join(r.Training, "\n"))
	return b.String()
}

var resumeData = Resume{
	Name:     "Gorka Molero",
	Title:    "Full-Stack Engineer, Consultant & AI Enthusiast",
	Location: "Madrid / Lisbon / Remote",
	Contact: Contact{
		GitHub: "github.com/gorkamolero",
		Studio: "bravura.studio",
		Email:  "contact@gorka.dev",
	},
	Summary: "Full-Stack Engineer with expertise in modern web technologies, AI integration, and creative coding. " +
		"Passionate about building elegant solutions that bridge technology and human experience. " +
		"Active in the music production scene as co-founder of QTZL netlabel, exploring the intersection of code, art, and sound.",
	Experience: []Job{
		{
			Title:   "Web Developer",
			Company: "Roadie",
			Period:  "December 2023 - Present",
			Description: []string{
				"Working with the Roadie team on transforming their site into a striking Backstage platform",
				"Implementing modern UI patterns and performance optimizations",
				"Collaborating with distributed team across multiple time zones",
			},
		},
		{
			Title:   "Software Engineer",
			Company: "Typeshare.co",
			Period:  "November 2022 - December 2023",
			Description: []string{
				"Led development of AI-first 2.0 version for online writers platform",
				"Managed UI architecture and text editor implementation using Tiptap",
				"Integrated AI features for content generation and optimization",
			},
		},
		{
			Title:   "Co-founder & CTO",
			Company: "Maility",
			Period:  "November 2022 - Present",
			Description: []string{
				"Co-founded and served as technical lead for email automation startup",
				"Grew company to 20K MRR within 6 months",
				"Built scalable architecture and led technical strategy",
			},
		},
		{
			Title:   "Web Developer & Design System Lead",
			Company: "Chessable (Play Magnus Group)",
			Period:  "September 2020 - August 2022",
			Description: []string{
				"Led high-performing remote team to build complete design system",
				"Worked on chess learning platform founded by Magnus Carlsen",
				"Implemented component library and established UI standards",
			},
		},
		{
			Title:   "CTO",
			Company: "Adalab",
			Period:  "October 2019 - August 2020",
			Description: []string{
				"Led technology for NGO offering front-end bootcamp for women",
				"Built platform for candidates and employment matching system",
				"Implemented solution using React, Firebase, and no-code tools",
			},
		},
	},
	Skills: Skills{
		Languages: []string{"TypeScript", "JavaScript", "HTML5/CSS3", "Python"},
		Frontend:  []string{"React", "Next.js", "Vue.js", "Web Components", "Storybook"},
		Backend:   []string{"Node.js", "Express", "T3 Stack", "Firebase"},
		AIML:      []string{"Vercel AI SDK", "LangChain", "OpenAI API"},
		Design:    []string{"Figma", "Webflow", "Design Systems", "Component Libraries"},
		Creative:  []string{"Ableton Live", "Max/MSP", "Music Production"},
		Tools:     []string{"Git", "CI/CD", "Vercel", "GitHub/GitLab/Bitbucket"},
	},
	Projects: []ResumeProject{
		{
			Name:        "QTZL (Quetzalcoatl)",
			Description: "Co-founded netlabel promoting Latin American electronic artists. Featured in Vice, Redbull Music, BBC4",
			Tech:        []string{"Web Development", "Music Curation", "Digital Distribution"},
		},
		{
			Name:        "Simply Rickshaw",
			Description: "E-commerce platform for unique global objects and original designs. Expanded from online to physical store in Madrid",
			Tech:        []string{"E-commerce", "Web Design", "Retail"},
		},
		{
			Name:        "Responsive Design Thought Leadership",
			Description: "Published articles featured in Hacker News, Awwwards, Codrops. Topics: responsive design evolution, role of web designers",
			Tech:        []string{"Technical Writing", "Web Standards", "Design Philosophy"},
		},
	},
	Interests: []string{
		"Music Production & DJing",
		"Meditation & Mindfulness",
		"Chess",
		"Brazilian Jiu-Jitsu & Boxing",
		"Reading & Podcasts",
		"Travel",
		"Politics & Philosophy",
		"Cryptocurrency & Web3",
	},
	Education: []Education{
		{
			Degree:      "General Film Studies",
			Institution: "ECAM - Escuela de Cinematografía y del Audiovisual de Madrid",
			Year:        "2010",
			Focus:       "Specialization in Sound Engineering and Mixing",
		},
		{
			Degree:      "Cinema, Photography and Film Production",
			Institution: "ESCAC - Escola Superior de Cinema i Audiovisuals de Catalunya",
			Year:        "2009",
		},
	},
	Training: []string{
		"Client Ascension (2022-Present)",
		"Responsive Typography - Workshop with Jordan Moore",
		"Multi-device Web - Workshop with Luke Wroblewski",
		"An Event Apart - Conferences with Ethan Marcotte, Karen McGrane, Jeffrey Zeldman",
		"Responsive Design Workshops - Brad Frost, Andy Clarke",
		"Smashing Conference - Christian Heilmann, Jonathan Snook",
	},
}
