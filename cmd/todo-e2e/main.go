// todo-e2e drives a browser against a running todo application and checks
// that items can be listed, added and deleted.
//
// Usage:
//
//	todo-e2e run                          # all scenarios against http://localhost:3000/
//	todo-e2e run --driver chromedp --run 'Add'
//	todo-e2e run --config todo-e2e.yaml --output json
//	todo-e2e list
//
// Exits with status 1 when any scenario fails.
package main

import (
	"errors"
	"fmt"
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errScenariosFailed) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}
