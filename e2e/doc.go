//go:build e2e

// Package e2e runs the todo scenarios against a live application.
//
// These tests are isolated from the standard test suite via build tags.
// They require a Chrome browser (auto-downloaded by Rod if not present)
// and a running todo application.
//
// Running E2E tests:
//
//	go test -tags=e2e ./e2e/...
//
// Environment:
//   - TODO_E2E_URL: application root (default http://localhost:3000/)
//   - TODO_E2E_DRIVER: rod (default), chromedp or playwright
//   - HEADLESS=false: show the browser window while debugging
//
// Tests skip when the application is not reachable.
//
// Test isolation:
// Each scenario runs on its own page and clears the list before and after.
// All tests share one application, so they must not run in parallel.
package e2e
