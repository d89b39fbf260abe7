package errors

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category Category
	Message  string
	Detail   string
}

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// Configuration Errors (E100-E199)
	// ============================================

	"E100": {
		Category: CategoryConfig,
		Message:  "Configuration file not found",
	},
	"E101": {
		Category: CategoryConfig,
		Message:  "Failed to read configuration file",
	},
	"E102": {
		Category: CategoryConfig,
		Message:  "Failed to load environment overrides",
	},
	"E103": {
		Category: CategoryConfig,
		Message:  "Failed to decode configuration",
	},
	"E110": {
		Category: CategoryConfig,
		Message:  "Invalid server port",
		Detail:   "Port must be between 0 and 65535.",
	},
	"E111": {
		Category: CategoryConfig,
		Message:  "Invalid duration",
	},
	"E112": {
		Category: CategoryConfig,
		Message:  "Invalid log level",
		Detail:   "Log level must be one of debug, info, warn, error.",
	},
	"E113": {
		Category: CategoryConfig,
		Message:  "Invalid log format",
		Detail:   "Log format must be text or json.",
	},
	"E114": {
		Category: CategoryConfig,
		Message:  "Invalid upload limit",
	},

	// ============================================
	// CLI Errors (E200-E299)
	// ============================================

	"E200": {
		Category: CategoryCLI,
		Message:  "Failed to read draft",
	},
	"E201": {
		Category: CategoryCLI,
		Message:  "Failed to decode draft",
		Detail:   "The draft must be a JSON object keyed by field name.",
	},
	"E202": {
		Category: CategoryCLI,
		Message:  "Draft is not submittable",
	},

	// ============================================
	// Runtime Errors (E300-E399)
	// ============================================

	"E300": {
		Category: CategoryRuntime,
		Message:  "Server failed",
	},
	"E301": {
		Category: CategoryRuntime,
		Message:  "Tracing setup failed",
	},
}
