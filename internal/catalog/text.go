package catalog

// Canned panels for the display-only slash commands.
var (
	About = `
╔═══════════════════════════════════════════╗
║          DIGITAL ALCHEMIST                ║
╚═══════════════════════════════════════════╝

> Accessing consciousness.ln...
> Decrypting multidimensional persona...

I traverse many realms:
  • Engineering digital experiences
  • Producing electronic frequencies
  • Experimenting with artificial minds

Senior Full-Stack Engineer by day.
Musical architect by night.
AI explorer in between dimensions.

Currently manifesting at:
  • UI Engineering in the corporate realm
  • QTZL - Transatlantic musical collective
  • Various experiments in digital consciousness

> What brings you to my terminal?

> EOF
`

	ContactPanel = `
╔═══════════════════════════════════════════╗
║        ESTABLISH CONNECTION               ║
╚═══════════════════════════════════════════╝

> Opening secure channels...

GitHub:   github.com/gorkamolero
Studio:   bravura.studio
Location: Madrid, Spain

> Additional frequencies available upon request
> Encrypted channels for sensitive transmissions

> Type anything to speak with my digital twin
`

	SkillsPanel = `
╔═══════════════════════════════════════════╗
║          TECHNICAL SKILLS                 ║
╚═══════════════════════════════════════════╝

LANGUAGES:
  [████████████████████] TypeScript/JavaScript
  [████████████████░░░░] Python
  [██████████████░░░░░░] Rust
  [████████████░░░░░░░░] Go

FRAMEWORKS:
  [████████████████████] Next.js/React
  [████████████████░░░░] Node.js
  [██████████████░░░░░░] FastAPI

AI/ML:
  [████████████████░░░░] LangChain
  [████████████████░░░░] Transformers
  [██████████████░░░░░░] PyTorch

> Loading additional skills...
`

	ResumePDF = `
> Initiating download: gorka_resume_2024.pdf
> Size: 127KB
> Transfer complete.

[!] Check your downloads folder
[!] If download didn't start, refresh and try again
`
)
