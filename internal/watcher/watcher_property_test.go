//go:build property

package watcher

import (
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestDebouncerProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.Rng.Seed(9876)
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)

	properties.Property("one event per path in first-seen order", prop.ForAll(
		func(paths []string) bool {
			if len(paths) == 0 {
				return true
			}

			d := newDebouncer(time.Hour)
			defer d.stop()
			for i, path := range paths {
				d.addEvent(ChangeEvent{Path: path, Size: int64(i)})
			}
			d.flush()

			events := <-d.output

			var order []string
			last := map[string]int64{}
			for i, path := range paths {
				if _, ok := last[path]; !ok {
					order = append(order, path)
				}
				last[path] = int64(i)
			}

			if len(events) != len(order) {
				return false
			}
			for i, event := range events {
				if event.Path != order[i] || event.Size != last[event.Path] {
					return false
				}
			}
			return true
		},
		gen.SliceOfN(12, gen.OneConstOf("a.html", "b.html", "c.html", "quill.json")),
	))

	properties.TestingRun(t)
}
