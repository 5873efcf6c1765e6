package lattigoextension

import (
	"github.com/tuneinsight/lattigo/v5/core/rlwe"
	"github.com/tuneinsight/lattigo/v5/he/hefloat"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// KeyChain gathers the key material of the party owning the secret key.
// The evaluation routines never touch it: drivers and tests build one, hand Evk and
// Encryptor to NewEngine, and keep Decryptor for themselves.
type KeyChain struct {
	Sk        *rlwe.SecretKey
	Pk        *rlwe.PublicKey
	Evk       *rlwe.MemEvaluationKeySet
	Encryptor *rlwe.Encryptor
	Decryptor *rlwe.Decryptor
}

// GenKeyChain generates a key pair, a relinearization key and one Galois key per distinct rotation.
func GenKeyChain(params hefloat.Parameters, rotations []int) *KeyChain {
	kgen := rlwe.NewKeyGenerator(params)
	sk, pk := kgen.GenKeyPairNew()
	rlk := kgen.GenRelinearizationKeyNew(sk)

	var gks []*rlwe.GaloisKey
	if rots := NormalizeRotations(rotations, params.MaxSlots()); len(rots) > 0 {
		gks = kgen.GenGaloisKeysNew(params.GaloisElements(rots), sk)
	}

	return &KeyChain{
		Sk:        sk,
		Pk:        pk,
		Evk:       rlwe.NewMemEvaluationKeySet(rlk, gks...),
		Encryptor: rlwe.NewEncryptor(params, pk),
		Decryptor: rlwe.NewDecryptor(params, sk),
	}
}

// NormalizeRotations maps rotations into [1, slots), removes duplicates and
// identities, and returns them sorted.
func NormalizeRotations(rotations []int, slots int) []int {
	set := make(map[int]bool, len(rotations))
	for _, k := range rotations {
		k = ((k % slots) + slots) % slots
		if k != 0 {
			set[k] = true
		}
	}
	rots := maps.Keys(set)
	slices.Sort(rots)
	return rots
}
