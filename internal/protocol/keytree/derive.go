package keytree

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/binary"
	"fmt"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"

	"rolechain/internal/crypto"
	"rolechain/internal/domain"
)

// HardenedOffset is the first hardened child index.
const HardenedOffset uint32 = 1 << 31

// DeriveChild derives the child at index. The result depends only on the
// parent's key material, chain code and index.
//
// Hardened indices require the parent private key and fail with
// domain.ErrNoPrivateKey on a neutered parent. When the derived scalar is
// invalid the error is a *domain.DerivationError; retry with its Next().
func (n *KeyNode) DeriveChild(index uint32) (*KeyNode, error) {
	data := make([]byte, crypto.PublicKeyBytes+4)
	defer crypto.Wipe(data)

	if index >= HardenedOffset {
		if n.priv == nil {
			return nil, fmt.Errorf("%w: hardened child %d needs the parent private key",
				domain.ErrNoPrivateKey, index-HardenedOffset)
		}
		k := n.priv.Key.Bytes()
		copy(data[1:33], k[:])
		crypto.Wipe(k[:])
	} else {
		copy(data[:33], n.compressed)
	}
	binary.BigEndian.PutUint32(data[33:], index)

	mac := hmac.New(sha512.New, n.chainCode[:])
	_, _ = mac.Write(data)
	sum := mac.Sum(nil)
	defer crypto.Wipe(sum)

	var tweak secp256k1.ModNScalar
	defer tweak.Zero()
	if overflow := tweak.SetByteSlice(sum[:32]); overflow || tweak.IsZero() {
		return nil, &domain.DerivationError{Index: index}
	}

	var child *KeyNode
	if n.priv != nil {
		var k secp256k1.ModNScalar
		k.Set(&n.priv.Key).Add(&tweak)
		if k.IsZero() {
			return nil, &domain.DerivationError{Index: index}
		}
		priv := secp256k1.NewPrivateKey(&k)
		k.Zero()
		child = newNode(priv, priv.PubKey(), sum[32:])
	} else {
		var tweakPoint, parentPoint, sumPoint secp256k1.JacobianPoint
		secp256k1.ScalarBaseMultNonConst(&tweak, &tweakPoint)
		n.pub.AsJacobian(&parentPoint)
		secp256k1.AddNonConst(&tweakPoint, &parentPoint, &sumPoint)
		if sumPoint.Z.IsZero() || (sumPoint.X.IsZero() && sumPoint.Y.IsZero()) {
			return nil, &domain.DerivationError{Index: index}
		}
		sumPoint.ToAffine()
		child = newNode(nil, secp256k1.NewPublicKey(&sumPoint.X, &sumPoint.Y), sum[32:])
	}

	child.depth = n.depth + 1
	child.index = index
	child.parent = n.Fingerprint()
	child.path = append(n.path.clone(), index)
	return child, nil
}

// DerivePath walks path from n, one DeriveChild per component.
func (n *KeyNode) DerivePath(path Path) (*KeyNode, error) {
	cur := n
	for _, idx := range path {
		next, err := cur.DeriveChild(idx)
		if err != nil {
			return nil, fmt.Errorf("derive %s: %w", path, err)
		}
		cur = next
	}
	return cur, nil
}

// DeriveRole derives the role's reserved branch under n, which is expected
// to be a master node.
func (n *KeyNode) DeriveRole(role domain.Role) (*KeyNode, error) {
	p, err := RolePath(role)
	if err != nil {
		return nil, err
	}
	return n.DerivePath(p)
}

// DeriveRoleFromEnvironment derives the role's branch from the environment
// node (m/369/0), which may be neutered.
func DeriveRoleFromEnvironment(env *KeyNode, role domain.Role) (*KeyNode, error) {
	branch, ok := role.Branch()
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownRole, role)
	}
	return env.DeriveChild(branch)
}
