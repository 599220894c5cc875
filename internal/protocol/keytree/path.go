package keytree

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"rolechain/internal/domain"
)

const (
	// Purpose is the first path component of every role branch.
	Purpose uint32 = 369
	// Account is the second path component of every role branch.
	Account uint32 = 0
)

// Path is a sequence of child indices from a master node.
type Path []uint32

// EnvironmentPath is the parent of every role branch.
var EnvironmentPath = Path{Purpose, Account}

// RolePath returns the reserved path of role.
func RolePath(role domain.Role) (Path, error) {
	branch, ok := role.Branch()
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownRole, role)
	}
	return append(EnvironmentPath.clone(), branch), nil
}

// ParsePath parses "m/369/0/2". A trailing ' or h marks a hardened index.
func ParsePath(s string) (Path, error) {
	parts := strings.Split(strings.TrimSpace(s), "/")
	if len(parts) == 0 || parts[0] != "m" {
		return nil, fmt.Errorf("keytree: path %q must start with m", s)
	}
	p := make(Path, 0, len(parts)-1)
	for _, part := range parts[1:] {
		hardened := strings.HasSuffix(part, "'") || strings.HasSuffix(part, "h")
		if hardened {
			part = part[:len(part)-1]
		}
		v, err := strconv.ParseUint(part, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("keytree: path %q: %w", s, err)
		}
		idx := uint32(v)
		if idx >= HardenedOffset {
			return nil, fmt.Errorf("keytree: path %q: index %d out of range", s, idx)
		}
		if hardened {
			idx += HardenedOffset
		}
		p = append(p, idx)
	}
	return p, nil
}

// String renders the path in m/a/b'/c form.
func (p Path) String() string {
	var sb strings.Builder
	sb.WriteString("m")
	for _, idx := range p {
		sb.WriteByte('/')
		if idx >= HardenedOffset {
			sb.WriteString(strconv.FormatUint(uint64(idx-HardenedOffset), 10))
			sb.WriteByte('\'')
			continue
		}
		sb.WriteString(strconv.FormatUint(uint64(idx), 10))
	}
	return sb.String()
}

func (p Path) clone() Path { return slices.Clone(p) }
