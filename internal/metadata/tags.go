package metadata

import (
	"fmt"
	"strconv"
	"strings"
)

// TagName is the struct tag key read by the extractor.
const TagName = "edm"

// typeTag holds the parsed type-level metadata from a marker embed's tag.
type typeTag struct {
	namespace        string
	name             string
	hasEntitySet     bool
	entitySetName    string
	containerName    string
	defaultContainer bool
	abstract         bool
}

func parseTypeTag(tag string) (typeTag, error) {
	var tt typeTag
	if tag == "" {
		return tt, nil
	}
	for _, part := range strings.Split(tag, ",") {
		part = strings.TrimSpace(part)
		switch {
		case part == "":
		case strings.HasPrefix(part, "namespace="):
			tt.namespace = strings.TrimPrefix(part, "namespace=")
		case strings.HasPrefix(part, "name="):
			tt.name = strings.TrimPrefix(part, "name=")
		case part == "set":
			tt.hasEntitySet = true
		case strings.HasPrefix(part, "set="):
			tt.hasEntitySet = true
			tt.entitySetName = strings.TrimPrefix(part, "set=")
		case strings.HasPrefix(part, "container="):
			tt.containerName = strings.TrimPrefix(part, "container=")
		case part == "defaultContainer":
			tt.defaultContainer = true
		case part == "abstract":
			tt.abstract = true
		default:
			return tt, fmt.Errorf("unknown type tag part %q", part)
		}
	}
	return tt, nil
}

// fieldTag holds the parsed field-level metadata.
type fieldTag struct {
	skip         bool
	key          bool
	nav          bool
	mediaContent bool

	name         string
	typeOverride Kind
	maxLength    int
	precision    int
	scale        int
	nullableSet  bool
	nullable     bool
	concurrency  bool

	fromRole     string
	toRole       string
	association  string
	multiplicity Multiplicity
}

// hasPropertyParts reports whether the tag carries property or key metadata,
// as opposed to only unrelated markers.
func (ft fieldTag) hasPropertyParts() bool {
	return ft.key || ft.name != "" || ft.typeOverride != "" ||
		ft.maxLength > 0 || ft.precision > 0 || ft.scale > 0 ||
		ft.nullableSet || ft.concurrency
}

func parseFieldTag(tag string) (fieldTag, error) {
	var ft fieldTag
	if tag == "-" {
		ft.skip = true
		return ft, nil
	}
	if tag == "" {
		return ft, nil
	}
	for _, part := range strings.Split(tag, ",") {
		part = strings.TrimSpace(part)
		switch {
		case part == "":
		case part == "key":
			ft.key = true
		case part == "nav":
			ft.nav = true
		case part == "mediaContent":
			ft.mediaContent = true
		case strings.HasPrefix(part, "name="):
			ft.name = strings.TrimPrefix(part, "name=")
		case strings.HasPrefix(part, "type="):
			kind := Kind(strings.TrimPrefix(part, "type="))
			if !KnownKind(kind) {
				return ft, fmt.Errorf("unknown type kind %q", kind)
			}
			ft.typeOverride = kind
		case strings.HasPrefix(part, "maxlength="):
			if err := parseIntPart(part, "maxlength=", &ft.maxLength); err != nil {
				return ft, err
			}
		case strings.HasPrefix(part, "precision="):
			if err := parseIntPart(part, "precision=", &ft.precision); err != nil {
				return ft, err
			}
		case strings.HasPrefix(part, "scale="):
			if err := parseIntPart(part, "scale=", &ft.scale); err != nil {
				return ft, err
			}
		case part == "nullable":
			ft.nullableSet = true
			ft.nullable = true
		case part == "nullable=false":
			ft.nullableSet = true
			ft.nullable = false
		case part == "concurrency":
			ft.concurrency = true
		case strings.HasPrefix(part, "fromRole="):
			ft.fromRole = strings.TrimPrefix(part, "fromRole=")
		case strings.HasPrefix(part, "toRole="):
			ft.toRole = strings.TrimPrefix(part, "toRole=")
		case strings.HasPrefix(part, "association="):
			ft.association = strings.TrimPrefix(part, "association=")
		case strings.HasPrefix(part, "multiplicity="):
			m := Multiplicity(strings.TrimPrefix(part, "multiplicity="))
			if !ValidMultiplicity(m) {
				return ft, fmt.Errorf("invalid multiplicity %q", m)
			}
			ft.multiplicity = m
		default:
			return ft, fmt.Errorf("unknown field tag part %q", part)
		}
	}

	// Contradictory metadata is a hard error, not something to guess around.
	if ft.nav && ft.key {
		return ft, fmt.Errorf("field cannot be both key and navigation property")
	}
	if ft.nav && ft.mediaContent {
		return ft, fmt.Errorf("field cannot be both media content and navigation property")
	}
	return ft, nil
}

func parseIntPart(part, prefix string, target *int) error {
	val := strings.TrimPrefix(part, prefix)
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed < 0 {
		return fmt.Errorf("invalid value %q for %s", val, strings.TrimSuffix(prefix, "="))
	}
	*target = parsed
	return nil
}
