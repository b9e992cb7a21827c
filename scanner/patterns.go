package scanner

import "regexp"

// languageByExt maps file extensions to the language key used by the pattern
// tables. Files with extensions outside this table are not scanned at all.
var languageByExt = map[string]string{
	".py":     "python",
	".js":     "javascript",
	".jsx":    "javascript",
	".ts":     "typescript",
	".tsx":    "typescript",
	".swift":  "swift",
	".m":      "objc",
	".rs":     "rust",
	".go":     "go",
	".rb":     "ruby",
	".java":   "java",
	".kt":     "kotlin",
	".c":      "c",
	".h":      "c",
	".cpp":    "cpp",
	".hpp":    "cpp",
	".cs":     "c_sharp",
	".dart":   "dart",
	".php":    "php",
	".lua":    "lua",
	".vue":    "javascript",
	".svelte": "javascript",
}

// categoryImports is the pattern category whose matches double as raw import
// strings for the resolver.
const categoryImports = "imports"

type rawPattern struct {
	category string
	expr     string
}

type bindingPattern struct {
	category string
	re       *regexp.Regexp
}

// rawBindingPatterns lists, per language, the ordered (category, regex) pairs
// the extractor runs line by line. Adding a language is adding a table entry.
// Patterns are matched against single lines, so none of them can span a line
// break.
var rawBindingPatterns = map[string][]rawPattern{
	"swift": {
		{"protocols", `protocol\s+(\w+)`},
		{"delegates", `(\w+Delegate|\w+DataSource)`},
		{"notifications", `NotificationCenter\.\w+\.\w+\(.*?name:\s*[.\w]*(\w+)`},
		{"core_data", `@FetchRequest|NSManagedObject|NSPersistentContainer`},
		{"combine", `@Published|PassthroughSubject|CurrentValueSubject|\.sink\b`},
		{"swiftui_env", `@Environment|@EnvironmentObject|@StateObject|@ObservedObject|@AppStorage`},
		{"api_calls", `URLSession|URLRequest|\.dataTask|async\s+let|try\s+await`},
		{"keychain", `Keychain|SecItem|kSecClass`},
		{"userdefaults", `UserDefaults\.\w+`},
	},
	"python": {
		{"imports", `^(?:from\s+(\S+)\s+import|import\s+(\S+))`},
		{"decorators", `@(\w+)`},
		{"api_endpoints", `@(?:app|router|api)\.\w+\(\s*['"]([^'"]+)`},
		{"db_models", `class\s+\w+\(.*(?:Model|Base|db\.Model)`},
		{"env_vars", `os\.(?:environ|getenv)\s*[\[\(]\s*['"](\w+)`},
		{"signals", `\.connect\(|signal\(|@receiver`},
	},
	"javascript": {
		{"imports", `(?:import\s+.*?from\s+['"]([^'"]+)|require\s*\(\s*['"]([^'"]+))`},
		{"exports", `(?:export\s+(?:default\s+)?(?:class|function|const|let|var)\s+(\w+)|module\.exports)`},
		{"api_routes", `(?:app|router)\.\s*(get|post|put|delete|patch)\s*\(\s*['"]([^'"]+)`},
		{"event_emitters", `\.on\s*\(\s*['"](\w+)|\.emit\s*\(\s*['"](\w+)`},
		{"env_vars", `process\.env\.(\w+)`},
		{"hooks", `use[A-Z]\w+`},
		{"context", `createContext|useContext|\.Provider`},
	},
	"typescript": {
		{"imports", `(?:import\s+.*?from\s+['"]([^'"]+)|require\s*\(\s*['"]([^'"]+))`},
		{"exports", `(?:export\s+(?:default\s+)?(?:class|function|const|let|var|interface|type|enum)\s+(\w+))`},
		{"interfaces", `interface\s+(\w+)`},
		{"api_routes", `(?:app|router)\.\s*(get|post|put|delete|patch)\s*\(\s*['"]([^'"]+)`},
		{"decorators", `@(\w+)`},
		{"env_vars", `process\.env\.(\w+)`},
	},
	"rust": {
		{"imports", `use\s+([\w:]+)`},
		{"traits", `trait\s+(\w+)`},
		{"unsafe", `unsafe\s+\{`},
		{"ffi", `extern\s+"C"`},
	},
	"go": {
		{"imports", `import\s+(?:\(\s*)?["\s]*([^"\s\)]+)`},
		{"interfaces", `type\s+(\w+)\s+interface`},
		{"goroutines", `go\s+\w+`},
		{"http_handlers", `http\.Handle(?:Func)?\s*\(\s*['"]([^'"]+)`},
	},
	"java": {
		{"imports", `import\s+([\w.]+)`},
		{"interfaces", `interface\s+(\w+)`},
		{"annotations", `@(\w+)`},
		{"spring_endpoints", `@(?:Get|Post|Put|Delete|Patch|Request)Mapping\s*\(\s*['"]?([^'")\s]+)`},
	},
	"kotlin": {
		{"imports", `import\s+([\w.]+)`},
		{"annotations", `@(\w+)`},
		{"coroutines", `(?:launch|async|withContext|suspend\s+fun)`},
	},
	"c_sharp": {
		{"imports", `using\s+([\w.]+)`},
		{"interfaces", `interface\s+(\w+)`},
		{"attributes", `\[(\w+)`},
	},
	"ruby": {
		{"imports", `require\s+['"]([^'"]+)`},
		{"routes", `(?:get|post|put|delete|patch)\s+['"]([^'"]+)`},
	},
	"dart": {
		{"imports", `import\s+['"]([^'"]+)`},
		{"providers", `Provider|ChangeNotifier|Riverpod|Bloc`},
	},
	"php": {
		{"imports", `(?:use|require|include)(?:_once)?\s+['"]?([^'";\s]+)`},
		{"routes", `Route::\w+\(\s*['"]([^'"]+)`},
	},
}

// bindingPatterns holds the compiled tables. A pattern that fails to compile
// is dropped for its language rather than aborting anything.
var bindingPatterns = compilePatterns(rawBindingPatterns)

func compilePatterns(raw map[string][]rawPattern) map[string][]bindingPattern {
	compiled := make(map[string][]bindingPattern, len(raw))
	for lang, pats := range raw {
		list := make([]bindingPattern, 0, len(pats))
		for _, p := range pats {
			re, err := regexp.Compile(p.expr)
			if err != nil {
				continue
			}
			list = append(list, bindingPattern{category: p.category, re: re})
		}
		compiled[lang] = list
	}
	return compiled
}
