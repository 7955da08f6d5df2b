package cms

import (
	"fmt"
	"regexp"
	"strings"

	"inkstand/internal/config"
	models "inkstand/internal/domain/models/cms"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

var (
	subdomainPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9-]{1,62}$`)
	colorPattern     = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)
	hashPattern      = regexp.MustCompile(`^[A-Za-z0-9_-]{1,128}$`)
)

var kindRule = validation.By(func(value interface{}) error {
	kind, _ := value.(models.NodeKind)
	if !kind.Valid() {
		return fmt.Errorf("must be %q or %q", models.KindFolder, models.KindArticle)
	}
	return nil
})

// notBlank rejects strings that are empty after trimming
var notBlank = validation.By(func(value interface{}) error {
	s, _ := value.(string)
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("cannot be blank")
	}
	return nil
})

// normalizeParent treats an empty parent ID as the root
func normalizeParent(id *string) *string {
	if id == nil || strings.TrimSpace(*id) == "" {
		return nil
	}
	return id
}

func sameParent(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// clampPage applies the default and maximum page size to a 1-based page request
func clampPage(page, size int) (int, int) {
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = config.DefaultPageSize
	}
	if size > config.MaxPageSize {
		size = config.MaxPageSize
	}
	return page, size
}
