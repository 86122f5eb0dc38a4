package todo

import (
	"context"
	"regexp"
)

// Scenario is one self-contained check against the application. Run is
// called on a page that has been opened and cleared; the runner clears it
// again afterwards.
type Scenario struct {
	Name string
	Run  func(ctx context.Context, app *App) error
}

// Scenarios returns the full suite in execution order.
func Scenarios() []Scenario {
	return []Scenario{
		PageStructure(),
		AddAndDelete(),
		EmptyState(),
		BulkAdd(),
	}
}

// Filter keeps the scenarios whose name matches pattern. An empty pattern
// keeps everything.
func Filter(scenarios []Scenario, pattern string) ([]Scenario, error) {
	if pattern == "" {
		return scenarios, nil
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}
	var out []Scenario
	for _, s := range scenarios {
		if re.MatchString(s.Name) {
			out = append(out, s)
		}
	}
	return out, nil
}

// PageStructure checks the application shell: title, header and main region.
func PageStructure() Scenario {
	return Scenario{
		Name: "PageStructure",
		Run: func(ctx context.Context, app *App) error {
			expect := app.Expect()
			if err := expect.ToHaveTitle(ctx, PageTitle); err != nil {
				return err
			}
			if err := expect.ToHaveText(ctx, SelectorHeader, HeaderText); err != nil {
				return err
			}
			return expect.ToBeVisible(ctx, SelectorMain)
		},
	}
}

// AddAndDelete adds two items, deletes the first one and checks that only
// the second remains.
func AddAndDelete() Scenario {
	return Scenario{
		Name: "AddAndDelete",
		Run: func(ctx context.Context, app *App) error {
			const first, second = "Test Todo 1", "Test Todo 2"
			expect := app.Expect()

			if err := app.Add(ctx, first); err != nil {
				return err
			}
			if err := expect.ToContainText(ctx, SelectorList, first); err != nil {
				return err
			}

			if err := app.Add(ctx, second); err != nil {
				return err
			}
			for _, title := range []string{first, second} {
				if err := expect.ToContainText(ctx, SelectorList, title); err != nil {
					return err
				}
			}

			if err := app.DeleteFirst(ctx); err != nil {
				return err
			}
			if err := expect.NotToContainText(ctx, SelectorList, first); err != nil {
				return err
			}
			return expect.ToContainText(ctx, SelectorList, second)
		},
	}
}

// EmptyState checks the placeholder shown when there are no items.
func EmptyState() Scenario {
	return Scenario{
		Name: "EmptyState",
		Run: func(ctx context.Context, app *App) error {
			expect := app.Expect()
			if err := expect.ToHaveText(ctx, SelectorEmptyMessage, EmptyMessage); err != nil {
				return err
			}
			return expect.ToHaveCount(ctx, SelectorListItem, 0)
		},
	}
}

// BulkAdd adds three items in order and checks the count and every label.
func BulkAdd() Scenario {
	return Scenario{
		Name: "BulkAdd",
		Run: func(ctx context.Context, app *App) error {
			titles := []string{"First Task", "Second Task", "Third Task"}
			expect := app.Expect()

			for _, title := range titles {
				if err := app.Add(ctx, title); err != nil {
					return err
				}
			}

			if err := expect.ToHaveCount(ctx, SelectorListItem, len(titles)); err != nil {
				return err
			}
			for _, title := range titles {
				if err := expect.ToContainText(ctx, SelectorList, title); err != nil {
					return err
				}
			}
			return nil
		},
	}
}
