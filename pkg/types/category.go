package types

// Category identifies which command bucket a generated script belongs to
type Category string

const (
	// CategoryOptimize holds texture optimization commands
	CategoryOptimize Category = "OPTIMIZE"

	// CategoryCompile holds shader compile commands
	CategoryCompile Category = "COMPILE"

	// CategoryInfo holds shader info/introspection commands
	CategoryInfo Category = "INFO"

	// CategoryRender holds render commands
	CategoryRender Category = "RENDER"

	// CategoryPostRender holds post-render commands
	CategoryPostRender Category = "POSTRENDER"
)

// Categories returns all command categories in execution order.
// Ordering is significant: later categories may depend on artifacts
// produced by earlier ones.
func Categories() []Category {
	return []Category{
		CategoryOptimize,
		CategoryCompile,
		CategoryInfo,
		CategoryRender,
		CategoryPostRender,
	}
}

// ParseCategory returns the Category matching s, or false if unknown
func ParseCategory(s string) (Category, bool) {
	switch Category(s) {
	case CategoryOptimize, CategoryCompile, CategoryInfo, CategoryRender, CategoryPostRender:
		return Category(s), true
	}
	return "", false
}
