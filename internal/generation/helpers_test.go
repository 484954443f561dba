package generation

import "github.com/phrazzld/taskpulse-api/internal/domain"

// testStyle keeps test call sites short.
func testStyle() domain.ContentStyle {
	return domain.DefaultContentStyle()
}
