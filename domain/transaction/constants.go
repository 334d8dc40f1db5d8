package transaction

import "golang.org/x/crypto/blake2b"

const (
	// SignatureSize is the size in bytes of a transaction signature.
	SignatureSize = 64

	// PublicKeySize is the size in bytes of an account public key.
	PublicKeySize = 32

	// HashSize is the size in bytes of an entry hash.
	HashSize = 32

	// MaxSignatures is the maximum number of signatures a transaction may
	// declare. The signature count must fit in a single byte on the wire,
	// so anything above this is unrepresentable.
	MaxSignatures = 255

	// messageHeaderSize is the serialized size of a message header:
	// required signatures, readonly signed and readonly unsigned counts.
	messageHeaderSize = 3

	// DefaultInstructionComputeUnitLimit is the compute unit limit granted
	// per non-budget instruction when the transaction doesn't request one.
	DefaultInstructionComputeUnitLimit = 200_000

	// MaxComputeUnitLimit is the maximum compute unit limit a transaction
	// can be granted, requested or not.
	MaxComputeUnitLimit = 1_400_000
)

// programIDFromLabel derives a well-known program ID from a human-readable
// label. Program IDs are not keypairs, so any collision-resistant derivation
// will do.
func programIDFromLabel(label string) PublicKey {
	return PublicKey(blake2b.Sum256([]byte(label)))
}

// Well-known program IDs.
var (
	// SystemProgramID is the native transfer/account management program.
	SystemProgramID = programIDFromLabel("merak-program:system")

	// ComputeBudgetProgramID is the program whose instructions set the
	// transaction's compute unit limit and price.
	ComputeBudgetProgramID = programIDFromLabel("merak-program:compute-budget")

	// VoteProgramID is the consensus vote program.
	VoteProgramID = programIDFromLabel("merak-program:vote")

	// Ed25519VerifierProgramID is the ed25519 signature verification
	// precompile.
	Ed25519VerifierProgramID = programIDFromLabel("merak-program:ed25519-verifier")

	// Secp256k1VerifierProgramID is the secp256k1 signature recovery
	// precompile.
	Secp256k1VerifierProgramID = programIDFromLabel("merak-program:secp256k1-verifier")
)

// precompileProgramIDs is the set of programs whose instructions carry extra
// signatures verified outside the runtime.
var precompileProgramIDs = map[PublicKey]struct{}{
	Ed25519VerifierProgramID:   {},
	Secp256k1VerifierProgramID: {},
}
