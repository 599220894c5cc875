package commands

import (
	"fmt"
	"io"
	"os"
	"strings"

	"rolechain/internal/domain"
	"rolechain/internal/protocol/keytree"
	"rolechain/internal/protocol/locator"
)

// readInput returns message when set, otherwise the contents of path ("-"
// is stdin).
func readInput(message, path string) ([]byte, error) {
	if message != "" {
		return []byte(message), nil
	}
	switch path {
	case "":
		return nil, fmt.Errorf("nothing to read: use --message or --in")
	case "-":
		return io.ReadAll(os.Stdin)
	default:
		return os.ReadFile(path)
	}
}

// writeOutput writes b to path, or to w when path is empty or "-".
func writeOutput(w io.Writer, path string, b []byte) error {
	if path == "" || path == "-" {
		_, err := w.Write(b)
		return err
	}
	return os.WriteFile(path, b, 0o600)
}

// parseRoles turns repeated "role=address" flags into a RoleSet.
func parseRoles(pairs []string) (locator.RoleSet, error) {
	var rs locator.RoleSet
	for _, p := range pairs {
		role, addr, ok := strings.Cut(p, "=")
		if !ok {
			return locator.RoleSet{}, fmt.Errorf("expected role=address, got %q", p)
		}
		if err := rs.Set(domain.Role(strings.TrimSpace(role)), domain.Address(strings.TrimSpace(addr))); err != nil {
			return locator.RoleSet{}, err
		}
	}
	return rs, nil
}

// parseAddresses splits comma separated addresses.
func parseAddresses(list []string) []domain.Address {
	var out []domain.Address
	for _, item := range list {
		for _, s := range strings.Split(item, ",") {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, domain.Address(s))
			}
		}
	}
	return out
}

// roleNode loads the private node of role and records its ancestry so
// ancestor linkage can resolve it.
func roleNode(role domain.Role) (*keytree.KeyNode, error) {
	if err := requirePassphrase(); err != nil {
		return nil, err
	}
	root, err := wire.Identity.LoadRoot(passphrase)
	if err != nil {
		return nil, err
	}
	path, err := keytree.RolePath(role)
	if err != nil {
		return nil, err
	}
	return wire.Ancestors.AddPath(root, path)
}

// chainBase returns the base node of chain number index under role.
func chainBase(role domain.Role, index uint32) (*keytree.KeyNode, error) {
	n, err := roleNode(role)
	if err != nil {
		return nil, err
	}
	base, err := n.DeriveChild(index)
	if err != nil {
		return nil, err
	}
	wire.Ancestors.Add(base)
	return base, nil
}
