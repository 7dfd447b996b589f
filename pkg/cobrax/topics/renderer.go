package topics

// Renderer formats topic content for terminal display. The ext argument is
// the topic file's extension, including the dot.
type Renderer interface {
	Render(content string, ext string) string
}

// PlainRenderer returns topic content unchanged.
type PlainRenderer struct{}

func (r *PlainRenderer) Render(content string, ext string) string {
	return content
}
