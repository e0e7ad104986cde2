package config // package config loads application configuration from environment variables

import (
    "log"     // log is used to report configuration errors and halt execution
    "os"      // os provides access to environment variables
    "strconv" // strconv converts strings to other types
    "time"    // time parses the check-in cutoff clock value
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  The JWT secret and session lifetime are injected
// here so that no signing material or TTL ever appears as a literal in the
// token code.
type Config struct {
    Env           string // application environment (e.g. "dev", "prod")
    Port          string // HTTP port to listen on
    DBUser        string // database username
    DBPass        string // database password (optional)
    DBHost        string // database host address
    DBPort        string // database port number
    DBName        string // database name
    JWTSecret     string // secret used to sign session tokens
    SessionTTLMin int    // session token time-to-live in minutes
    BcryptCost    int    // bcrypt cost for password hashing
    TZOffsetHours int    // fixed offset of the deployment timezone (WIB = +7)
    CutoffHour    int    // check-in cutoff hour, local time
    CutoffMinute  int    // check-in cutoff minute, local time
}

// Load reads configuration values from environment variables and returns a
// Config.  Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message.  SESSION_TTL_MIN is
// required on purpose: the deployment decides the session lifetime, the
// code does not.
func Load() Config {
    cutoffH, cutoffM := mustClock("CHECKIN_CUTOFF") // e.g. "07:30"
    return Config{
        Env:           must("APP_ENV"),                   // environment (dev/test/prod)
        Port:          must("APP_PORT"),                  // port to bind the HTTP server
        DBUser:        must("DB_USER"),                   // database user
        DBPass:        os.Getenv("DB_PASS"),              // database password (empty allowed)
        DBHost:        must("DB_HOST"),                   // database host
        DBPort:        must("DB_PORT"),                   // database port
        DBName:        must("DB_NAME"),                   // database name
        JWTSecret:     must("JWT_SECRET"),                // secret used for signing tokens
        SessionTTLMin: mustInt("SESSION_TTL_MIN"),        // session token TTL in minutes
        BcryptCost:    mustInt("BCRYPT_COST"),            // bcrypt cost factor
        TZOffsetHours: atoiDefault("TZ_OFFSET_HOURS", 7), // attendance timezone offset
        CutoffHour:    cutoffH,
        CutoffMinute:  cutoffM,
    }
}

// Timezone returns the fixed zone attendance dates are computed in.  The
// deployment runs in a single timezone, so a fixed offset is enough and
// avoids a dependency on the host tzdata.
func (c Config) Timezone() *time.Location {
    return time.FixedZone("attendance", c.TZOffsetHours*3600)
}

// SessionTTL returns the session lifetime as a duration.
func (c Config) SessionTTL() time.Duration {
    return time.Duration(c.SessionTTLMin) * time.Minute
}

// must retrieves the value of a required environment variable.  If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
    v, ok := os.LookupEnv(key)
    if !ok || v == "" {
        log.Fatalf("missing required env var: %s", key)
    }
    return v
}

// mustInt is like must() but converts the retrieved string into an integer.
// If conversion fails, the application logs a fatal error and exits.
func mustInt(key string) int {
    s := must(key)
    n, err := strconv.Atoi(s)
    if err != nil {
        log.Fatalf("invalid int for %s: %q", key, s)
    }
    return n
}

// mustClock parses a required "HH:MM" environment variable into its hour and
// minute components.  Invalid values abort startup.
func mustClock(key string) (int, int) {
    s := must(key)
    t, err := time.Parse("15:04", s)
    if err != nil {
        log.Fatalf("invalid clock value for %s: %q (want HH:MM)", key, s)
    }
    return t.Hour(), t.Minute()
}

// atoiDefault reads an optional integer environment variable, falling back
// to def when unset or unparsable.
func atoiDefault(key string, def int) int {
    s := os.Getenv(key)
    if s == "" {
        return def
    }
    n, err := strconv.Atoi(s)
    if err != nil {
        return def
    }
    return n
}
