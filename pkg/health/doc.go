/*
Package health runs the admin HTTP server: /healthz, /readyz, and
/metrics behind a single http.ServeMux. Readiness is aggregated from a
Checker's registered components rather than by reaching into the entity
registries directly, so the HTTP goroutine never touches state that the
single-threaded core owns — only the Checker's own mutex-guarded map.

# Usage

	checker := health.NewChecker("rooms", "chars", "users")
	checker.RegisterComponent("rooms", false, "initializing")
	checker.RegisterComponent("chars", false, "initializing")
	checker.RegisterComponent("users", false, "initializing")

	// once each domain's preflight completes:
	checker.UpdateComponent("rooms", true, "preflight complete")

	srv := health.NewServer(":8080", checker)
	go srv.ListenAndServe()
	defer srv.Close()
*/
package health
