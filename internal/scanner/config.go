package scanner

const (
	// DefaultMaxFileSize caps analyzed files at 10 MiB.
	DefaultMaxFileSize = 10 << 20

	// DefaultConcurrency bounds simultaneous analyses in concurrent scans.
	DefaultConcurrency = 5

	// DefaultBatchSize is how many files a concurrent scan admits at once.
	DefaultBatchSize = 10
)

// DefaultExclusions lists directory names and file patterns every scan
// skips. User-supplied exclusions extend this list, never replace it.
var DefaultExclusions = []string{
	// VCS metadata
	".git", ".svn", ".hg", ".bzr",
	// package and build output
	"node_modules", "venv", ".venv", "env", ".env", "__pycache__",
	"dist", "build", "target",
	// IDE state
	".idea", ".vscode",
	// compiled artifacts
	"*.exe", "*.dll", "*.so", "*.dylib", "*.pyc", "*.pyo",
	"*.obj", "*.o", "*.a", "*.lib", "*.bin", "*.jar", "*.war",
	"*.ear", "*.class", "*.pyd",
	// images
	"*.jpg", "*.jpeg", "*.png", "*.gif", "*.bmp", "*.tiff",
	"*.webp", "*.ico", "*.svg",
	// audio and video
	"*.mp3", "*.mp4", "*.avi", "*.mov", "*.mkv", "*.flv", "*.wav",
	// archives
	"*.zip", "*.tar", "*.gz", "*.bz2", "*.rar", "*.7z",
	// documents
	"*.pdf", "*.doc", "*.docx", "*.xls", "*.xlsx", "*.ppt", "*.pptx",
	// databases
	"*.db", "*.sqlite", "*.sqlite3",
}

// DefaultPriorityPatterns marks the files analyzed ahead of everything
// else: documentation, project configuration, and entry-point sources.
var DefaultPriorityPatterns = []string{
	// documentation
	"README*", "*.md", "docs/*", "*/docs/*",
	// configuration
	"*.json", "*.yaml", "*.yml", "*.toml", "*.ini", "*.config",
	"package.json", "setup.py", "pyproject.toml",
	// entry points and common sources
	"main.*", "index.*", "app.*",
	"*.py", "*.js", "*.ts", "*.java", "*.c", "*.cpp", "*.h",
}

// Config adjusts how a Scanner walks and analyzes a repository. The zero
// value scans with the defaults above.
type Config struct {
	// Exclusions are appended to DefaultExclusions. Entries starting
	// with "*" match file name suffixes; entries without wildcards match
	// directory and file names exactly.
	Exclusions []string

	// MaxFileSize is the largest file, in bytes, that will be analyzed.
	MaxFileSize int64

	// Concurrency caps simultaneous analyses during ScanConcurrent.
	Concurrency int

	// BatchSize is the number of files admitted per concurrent batch.
	BatchSize int

	// PriorityPatterns replaces DefaultPriorityPatterns when non-empty.
	PriorityPatterns []string

	// Progress, when set, receives (processed, total) after every file
	// during Scan and after every batch during ScanConcurrent.
	Progress func(processed, total int)
}

func (c Config) withDefaults() Config {
	merged := make([]string, 0, len(DefaultExclusions)+len(c.Exclusions))
	merged = append(merged, DefaultExclusions...)
	merged = append(merged, c.Exclusions...)
	c.Exclusions = merged

	if c.MaxFileSize <= 0 {
		c.MaxFileSize = DefaultMaxFileSize
	}
	if c.Concurrency <= 0 {
		c.Concurrency = DefaultConcurrency
	}
	if c.BatchSize <= 0 {
		c.BatchSize = DefaultBatchSize
	}
	if len(c.PriorityPatterns) == 0 {
		c.PriorityPatterns = append([]string(nil), DefaultPriorityPatterns...)
	}
	return c
}
