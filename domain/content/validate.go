package content

import (
	"regexp"

	"expoadmin/domain/shared"
	"expoadmin/pkg/datepicker"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

func checkSlug(entity, slug string) error {
	if slug == "" || slugPattern.MatchString(slug) {
		return nil
	}
	return shared.NewValidationError(entity, "slug", "slug must contain lowercase letters, digits and single dashes")
}

// checkDate 可选日期字段，非空时必须是 yyyy-MM-dd
func checkDate(entity, field, value string) error {
	if value == "" {
		return nil
	}
	if _, err := datepicker.ParseISODate(value); err != nil {
		return shared.NewValidationError(entity, field, field+" must be a yyyy-MM-dd date")
	}
	return nil
}

func sanitizeAll(sanitize func(string) string, fields ...*string) {
	for _, f := range fields {
		*f = sanitize(*f)
	}
}
