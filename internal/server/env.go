package server

import pkgutil "github.com/faciam-dev/gcform/pkg/util"

// allowedOrigins returns the list of origins allowed for CORS.
func allowedOrigins() []string {
	return pkgutil.GetEnvList("ALLOWED_ORIGINS", "http://localhost:5173")
}
