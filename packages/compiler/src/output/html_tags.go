package output

// Void HTML elements take no closing tag. Backends emitting raw HTML must
// consult this table; the Hono backend self-closes in JSX syntax instead.
var voidElements = map[string]bool{
	"area":   true,
	"base":   true,
	"br":     true,
	"col":    true,
	"embed":  true,
	"hr":     true,
	"img":    true,
	"input":  true,
	"link":   true,
	"meta":   true,
	"param":  true,
	"source": true,
	"track":  true,
	"wbr":    true,
}

// IsVoidElement reports whether tag is a void HTML element.
func IsVoidElement(tag string) bool {
	return voidElements[tag]
}
