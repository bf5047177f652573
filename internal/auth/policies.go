package auth

import (
	"fmt"

	"github.com/casbin/casbin/v2"

	"go-parish-platform/internal/logger"
)

// SeedDefaultPolicies ensures that the application has a baseline set of authorization rules.
// It checks if each default policy exists before adding it, making the operation idempotent
// and safe to run on every application start.
func SeedDefaultPolicies(e casbin.IEnforcer, log logger.Logger) {
	log.Info("Seeding default authorization policies...")

	// Anyone may browse the public parish sites; editors manage content
	// for their parish through /admin; platform admins additionally
	// manage the parishes themselves. The 'editor' role inherits from
	// 'anonymous' and 'admin' inherits from 'editor'.
	policies := [][]string{
		// Public site and auth routes.
		{"anonymous", "/", "GET"},
		{"anonymous", "/robots.txt", "GET"},
		{"anonymous", "/sitemap.xml", "GET"},
		{"anonymous", "/static/*", "GET"},
		{"anonymous", "/auth/login", "GET"},
		{"anonymous", "/auth/callback", "GET"},
		{"anonymous", "/auth/logout", "GET"},
		{"anonymous", "/media/*", "GET"},
		{"anonymous", "/p/*", "GET"},

		// Editors manage their parish's content and use the page builder.
		{"editor", "/admin", "GET"},
		{"editor", "/admin/*", "GET"},
		{"editor", "/admin/*", "POST"},
		{"editor", "/admin/*", "PUT"},
		{"editor", "/admin/*", "DELETE"},
		{"editor", "/api/*", "GET"},
		{"editor", "/api/*", "POST"},
		{"editor", "/api/*", "PUT"},
		{"editor", "/api/*", "PATCH"},
		{"editor", "/api/*", "DELETE"},

		// Platform admins manage tenants.
		{"admin", "/admin/parishes", "GET"},
		{"admin", "/admin/parishes", "POST"},
	}
	for _, p := range policies {
		if has, _ := e.HasPolicy(p); !has {
			if _, err := e.AddPolicy(p); err != nil {
				log.Error(err, fmt.Sprintf("Failed to add policy %v", p))
			}
		}
	}

	for _, g := range [][2]string{{"editor", "anonymous"}, {"admin", "editor"}} {
		if has, _ := e.HasRoleForUser(g[0], g[1]); !has {
			if _, err := e.AddRoleForUser(g[0], g[1]); err != nil {
				log.Error(err, fmt.Sprintf("Failed to add role %q -> %q", g[0], g[1]))
			}
		}
	}
	log.Info("Policy seeding complete.")
}
