package rundown

import (
	"fmt"
	"strings"
)

// Validation limits.
const (
	maxItems      = 2000
	maxIDLength   = 128
	maxNameLength = 200
)

// ValidateShow checks structural rules that must hold before a show is
// handed to the engine: every item and manual item has a unique, non-empty
// id. Payload problems are not errors here; they surface as invalid cues.
func ValidateShow(s *Show) error {
	if s == nil {
		return fmt.Errorf("%w: nil show", ErrInvalidShow)
	}
	if len(s.Name) > maxNameLength {
		return fmt.Errorf("%w: name exceeds %d characters", ErrInvalidShow, maxNameLength)
	}

	seen := make(map[string]struct{})
	count := 0
	check := func(id, where string) error {
		trimmed := strings.TrimSpace(id)
		if trimmed == "" {
			return fmt.Errorf("%w: %s: id is required", ErrInvalidShow, where)
		}
		if len(id) > maxIDLength {
			return fmt.Errorf("%w: %s: id exceeds %d characters", ErrInvalidShow, where, maxIDLength)
		}
		if _, dup := seen[id]; dup {
			return fmt.Errorf("%w: %s: duplicate id %q", ErrInvalidShow, where, id)
		}
		seen[id] = struct{}{}
		count++
		return nil
	}

	for si, seg := range s.Segments {
		for gi, grp := range seg.Groups {
			for ii, item := range grp.Items {
				where := fmt.Sprintf("segments[%d].groups[%d].items[%d]", si, gi, ii)
				if err := check(item.ID, where); err != nil {
					return err
				}
				for mi, child := range item.ManualItems {
					if err := check(child.ID, fmt.Sprintf("%s.items[%d]", where, mi)); err != nil {
						return err
					}
				}
			}
		}
	}

	if count > maxItems {
		return fmt.Errorf("%w: exceeds maximum of %d items", ErrInvalidShow, maxItems)
	}
	return nil
}

// RequirePlayable reports ErrEmptyRundown when the show has nothing the
// engine could take LIVE. An empty show is still a valid session, so this
// check is only applied where an operator supplies a rundown.
func RequirePlayable(s *Show) error {
	if s == nil {
		return fmt.Errorf("%w: nil show", ErrInvalidShow)
	}
	if Build(s).Len() == 0 {
		return fmt.Errorf("%w: show %q", ErrEmptyRundown, s.ID)
	}
	return nil
}
