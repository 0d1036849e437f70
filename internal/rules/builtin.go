package rules

// The builtin rulebook encodes the constitution's security and quality
// commandments as a code-literal table. It is the default when the
// server is started without a rulebook file, and the reference for what
// a complete rulebook looks like.

// BuiltinMandates returns the default mandate table.
func BuiltinMandates() []Mandate {
	return []Mandate{
		{
			ID:          "password_hashing",
			Description: "Passwords must be hashed with a modern KDF, never stored in plaintext or with fast hashes.",
			Severity:    SeverityCritical,
			TriggerKeywords: []string{
				"password", "auth", "login", "signup", "register", "credential",
			},
			ViolationPatterns: []string{
				"plaintext password",
				"plain text password",
				"store password plaintext",
				"password in plaintext",
				"regex:\\bmd5\\s*\\(\\s*password",
				"regex:\\bsha1\\s*\\(\\s*password",
			},
			RequiredReferenceTokens: []string{"bcrypt", "argon2", "scrypt", "pbkdf2"},
		},
		{
			ID:          "session_management",
			Description: "Sessions must expire and be invalidated on logout; tokens must not live forever.",
			Severity:    SeverityHigh,
			TriggerKeywords: []string{
				"auth", "login", "session", "token", "jwt", "cookie",
			},
			ViolationPatterns: []string{
				"never expires",
				"no expiration",
				"infinite session",
			},
			RequiredReferenceTokens: []string{"expir", "ttl", "timeout", "invalidat"},
		},
		{
			ID:          "rate_limiting",
			Description: "Authentication and other abuse-prone endpoints must be rate limited.",
			Severity:    SeverityHigh,
			TriggerKeywords: []string{
				"auth", "login", "signup", "api", "endpoint", "public",
			},
			RequiredReferenceTokens: []string{"rate limit", "rate-limit", "throttl", "brute force", "brute-force"},
		},
		{
			ID:          "input_validation",
			Description: "All external input must be validated before use.",
			Severity:    SeverityCritical,
			ViolationPatterns: []string{
				"skip validation",
				"without validation",
				"trust user input",
				"trust the input",
			},
			RequiredReferenceTokens: []string{"validat", "sanitiz", "allowlist", "whitelist", "schema"},
		},
		{
			ID:          "sql_injection",
			Description: "Database queries must use parameterized statements, never string concatenation of user input.",
			Severity:    SeverityCritical,
			TriggerKeywords: []string{
				"database", "sql", "query", "postgres", "mysql", "sqlite", "db ",
			},
			ViolationPatterns: []string{
				"concatenate the query",
				"string concatenation in the query",
				"regex:\"\\s*\\+\\s*userinput",
				"build sql by hand",
			},
			RequiredReferenceTokens: []string{"parameteriz", "prepared statement", "placeholder", "bind"},
		},
		{
			ID:          "secrets_handling",
			Description: "Secrets and API keys must come from the environment or a secret store, never hardcoded.",
			Severity:    SeverityCritical,
			ViolationPatterns: []string{
				"hardcode the secret",
				"hardcoded api key",
				"hardcoded secret",
				"commit the key",
				"api key in the code",
			},
		},
		{
			ID:          "error_handling",
			Description: "Failure paths must be handled explicitly; internal errors must not leak to users.",
			Severity:    SeverityMedium,
			ViolationPatterns: []string{
				"ignore the error",
				"ignore errors",
				"swallow the error",
			},
			RequiredReferenceTokens: []string{"error", "failure", "fallback"},
		},
		{
			ID:          "https_transport",
			Description: "Anything carrying credentials or personal data must travel over HTTPS/TLS.",
			Severity:    SeverityHigh,
			TriggerKeywords: []string{
				"auth", "login", "payment", "personal data", "pii", "webhook",
			},
			RequiredReferenceTokens: []string{"https", "tls", "ssl"},
		},
		{
			ID:          "logging_hygiene",
			Description: "Logs must never contain passwords, tokens, or other secrets.",
			Severity:    SeverityMedium,
			TriggerKeywords: []string{
				"log", "logging", "audit", "observability",
			},
			ViolationPatterns: []string{
				"log the password",
				"log the token",
				"log credentials",
			},
		},
	}
}

// BuiltinClassificationRules returns the default classification table.
// Priorities leave gaps so rulebook files can interleave custom rules.
// The catch-all NEW_FEATURE rule has the highest priority (evaluated
// last), guaranteeing classification is total.
func BuiltinClassificationRules() []ClassificationRule {
	return []ClassificationRule{
		{
			Category: "SECURITY",
			Keywords: []string{"vulnerab", "exploit", "security", "cve", "pentest", "xss", "csrf", "injection"},
			Priority: 10,
		},
		{
			Category: "DEBUG",
			Keywords: []string{"bug", "fix", "broken", "crash", "error", "doesn't work", "does not work", "failing"},
			Priority: 20,
		},
		{
			Category: "REFACTOR",
			Keywords: []string{"refactor", "clean up", "cleanup", "restructure", "rename", "simplify", "extract"},
			Priority: 30,
		},
		{
			Category: "PERFORMANCE",
			Keywords: []string{"slow", "performance", "optimize", "optimise", "latency", "speed up", "memory usage"},
			Priority: 40,
		},
		{
			Category: "DOCUMENTATION",
			Keywords: []string{"document", "readme", "docs", "comment", "explain how"},
			Priority: 50,
		},
		{
			Category: "QUESTION",
			Keywords: []string{"how do i", "how does", "what is", "why does", "question"},
			Priority: 60,
		},
		{
			Category: CategoryNewFeature,
			Priority: 100, // catch-all: empty keyword list matches everything
		},
	}
}

// DefaultRulebook returns the builtin rulebook, validated. The builtin
// tables are covered by tests, so validation failing here is a
// programming error, not a runtime condition.
func DefaultRulebook() (*Rulebook, error) {
	rb := &Rulebook{
		Mandates:            BuiltinMandates(),
		ClassificationRules: BuiltinClassificationRules(),
	}
	if err := rb.Validate(); err != nil {
		return nil, err
	}
	return rb, nil
}
