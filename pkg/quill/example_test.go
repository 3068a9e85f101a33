package quill_test

import (
	"fmt"

	"github.com/conneroisu/quill/pkg/quill"
)

func ExampleExtractFragments() {
	page := "<header>H</header>" +
		"<!-- fragment: list --><ul><li>1</li></ul><!-- endfragment: list -->"

	fmt.Println(quill.ExtractFragments(page, []string{"list"}))
	// Output: <ul><li>1</li></ul>
}
