package pipeline

import (
	"fmt"
	"regexp"
	"strings"
)

var slugInvalid = regexp.MustCompile(`[^a-z0-9]+`)

// slugify reduces an entity name to a storage-safe lowercase token.
func slugify(name string) string {
	slug := slugInvalid.ReplaceAllString(strings.ToLower(name), "_")
	slug = strings.Trim(slug, "_")
	if slug == "" {
		return "unnamed"
	}
	if len(slug) > 60 {
		slug = slug[:60]
	}
	return slug
}

// primaryPrefix is the storage prefix holding an entity's primary image.
func primaryPrefix(p Profile, entity Entity) string {
	return fmt.Sprintf("%s/%s/primary", p.StoragePrefix, slugify(entity.Name))
}

// logoPrefix is the storage prefix holding an entity's logo image.
func logoPrefix(p Profile, entity Entity) string {
	return fmt.Sprintf("%s/%s/logo", p.StoragePrefix, slugify(entity.Name))
}

// objectKey builds the deterministic object name. The filename embeds the
// sanitized entity name, the quality score, and the image-type tag so
// uploaded assets can be audited by eye.
func objectKey(prefix string, entity Entity, score int, imageType ImageType) string {
	return fmt.Sprintf("%s/%s_q%d_%s.jpg", prefix, slugify(entity.Name), score, imageType)
}
