package config

import (
	"crypto/ecdsa"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/golang-jwt/jwt/v5"
	"github.com/tehkyle/cspx/internal/log"
	"github.com/tehkyle/cspx/pkg/csp"
	"github.com/tehkyle/cspx/pkg/cspx"
)

var cfg Config
var once sync.Once

type config struct {
	Addr   string `env:"ADDR" envDefault:":8080"`
	Routes string `env:"ROUTES"`

	PublicDir    string `env:"PUBLIC_DIR"`
	PublicPrefix string `env:"PUBLIC_PREFIX"`

	CspDefaultSrc   string `env:"CSP_DEFAULT_SRC"`
	CspScriptSrc    string `env:"CSP_SCRIPT_SRC"`
	CspScriptInline string `env:"CSP_SCRIPT_INLINE"`
	CspStyleSrc     string `env:"CSP_STYLE_SRC"`
	CspStyleInline  string `env:"CSP_STYLE_INLINE"`
	CspReportOnly   bool   `env:"CSP_REPORT_ONLY"`
	CspReportUri    string `env:"CSP_REPORT_URI"`

	ReportViewerPass  string        `env:"REPORT_VIEWER_PASS"`
	ReportStoreWindow time.Duration `env:"REPORT_STORE_WINDOW" envDefault:"1h"`

	DevPass            string        `env:"DEV_PASS"`
	DevSessionDuration time.Duration `env:"DEV_SESSION_DURATION" envDefault:"12h"`
	DevDisableSecure   bool          `env:"DEV_DISABLE_SECURE"`

	JwtEc256    string `env:"JWT_EC_256"`
	JwtEc256Pub string `env:"JWT_EC_256_PUB"`
}

func Get() Config {
	once.Do(func() {
		var c config
		err := env.Parse(&c)
		if err != nil {
			log.New().WithError(err).Fatal("error parsing env")
		}
		var routes []cspx.Route
		if strings.TrimSpace(c.Routes) != "" {
			var err error
			routes, err = parseRoutes(c.Routes)
			if err != nil {
				log.New().WithError(err).Fatal("error parsing ROUTES")
			}
		}

		scriptInline, ok := csp.ParseInlineMode(c.CspScriptInline)
		if !ok {
			log.New().Fatal("error: CSP_SCRIPT_INLINE must be one of refuse, unsafe, nonce, hash")
		}
		styleInline, ok := csp.ParseInlineMode(c.CspStyleInline)
		if !ok {
			log.New().Fatal("error: CSP_STYLE_INLINE must be one of refuse, unsafe, nonce, hash")
		}

		if c.DevSessionDuration.Milliseconds() < 0 {
			log.New().Fatal("error: DEV_SESSION_DURATION is negative")
		}
		if c.ReportStoreWindow.Milliseconds() <= 0 {
			log.New().Fatal("error: REPORT_STORE_WINDOW must be positive")
		}

		cfg = Config{
			Addr:         strings.TrimSpace(c.Addr),
			Routes:       routes,
			PublicDir:    strings.TrimSpace(c.PublicDir),
			PublicPrefix: strings.TrimSpace(c.PublicPrefix),
			Policy: csp.Policy{
				DefaultSrc:   strings.TrimSpace(c.CspDefaultSrc),
				ScriptSrc:    strings.TrimSpace(c.CspScriptSrc),
				ScriptInline: scriptInline,
				StyleSrc:     strings.TrimSpace(c.CspStyleSrc),
				StyleInline:  styleInline,
				ReportOnly:   c.CspReportOnly,
				ReportURI:    strings.TrimSpace(c.CspReportUri),
			},
			ReportViewerPass:   strings.TrimSpace(c.ReportViewerPass),
			ReportStoreWindow:  c.ReportStoreWindow,
			DevPass:            strings.TrimSpace(c.DevPass),
			DevSessionDuration: c.DevSessionDuration,
			DevDisableSecure:   c.DevDisableSecure,
		}

		if strings.TrimSpace(c.JwtEc256) != "" {
			key, err := jwt.ParseECPrivateKeyFromPEM([]byte(strings.TrimSpace(c.JwtEc256)))
			if err != nil {
				log.New().WithError(err).Fatal("error parsing ECDSA private key")
			}
			cfg.JwtEc256 = key
		}

		if strings.TrimSpace(c.JwtEc256Pub) != "" {
			key, err := jwt.ParseECPublicKeyFromPEM([]byte(strings.TrimSpace(c.JwtEc256Pub)))
			if err != nil {
				log.New().WithError(err).Fatal("error parsing ECDSA public key")
			}
			cfg.JwtEc256Pub = key
		}
	})
	return cfg
}

type Config struct {
	Addr               string
	Routes             []cspx.Route
	PublicDir          string
	PublicPrefix       string
	Policy             csp.Policy
	ReportViewerPass   string
	ReportStoreWindow  time.Duration
	DevPass            string
	DevSessionDuration time.Duration
	DevDisableSecure   bool
	JwtEc256           *ecdsa.PrivateKey
	JwtEc256Pub        *ecdsa.PublicKey
}

func parseRoutes(routesString string) ([]cspx.Route, error) {
	var routes []cspx.Route
	err := json.Unmarshal([]byte(routesString), &routes)
	if err == nil && len(routes) > 0 {
		return routes, nil
	}
	for _, l := range strings.Split(routesString, "\n") {
		parts := strings.Fields(l)
		if len(parts) != 3 {
			return nil, errors.New("3 tokens per line required")
		}
		var strip bool
		switch strings.ToLower(parts[0]) {
		case "prefixstrip":
			strip = true
		case "prefix":
			strip = false
		default:
			return nil, errors.New("route mode required (Prefix/PrefixStrip)")
		}
		routes = append(routes, cspx.Route{
			Strip:  strip,
			Prefix: parts[1],
			Target: parts[2],
		})
	}
	return routes, nil
}
