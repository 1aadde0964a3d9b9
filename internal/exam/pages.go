package exam

import (
	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// PageCount reads the page count of the pdf at path. It is informational
// only, a file that cannot be read is still submitted as-is.
func PageCount(path string) (int, error) {
	return api.PageCountFile(path)
}
