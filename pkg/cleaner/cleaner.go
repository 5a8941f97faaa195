// Package cleaner provides composable markup cleaning stages.
// Each stage takes markup or text and returns a cleaner form of it; stages
// chain so that, for example, main-content extraction can run before the
// paste pipeline converts the result to markdown.
package cleaner

// Cleaner transforms content into a cleaner form.
type Cleaner interface {
	// Clean transforms the input. The output format depends on the
	// implementation (markup, markdown, plain text).
	Clean(content string) (string, error)

	// Name returns the cleaner type for logging/debugging.
	Name() string
}
