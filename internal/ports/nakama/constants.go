package nakama

const (
	// RpcCreateMatch is the Nakama RPC id clients call to open a new duel.
	RpcCreateMatch = "create_match"
	// RpcSeatToken mints a seat token for the standalone router.
	RpcSeatToken = "seat_token"

	// MatchNameGridDuel is the authoritative match handler name registered with Nakama.
	MatchNameGridDuel = "gridduel_match"

	// ResultsCollection is the storage collection finished duels are written to.
	ResultsCollection = "duel_results"
)

// Op codes for client messages and server events.
const (
	// Client -> Server
	OpDeploy int64 = 1
	OpMove   int64 = 2

	// Server -> Client events
	OpStateUpdate  int64 = 101
	OpError        int64 = 102
	OpResponse     int64 = 103
	OpPlayerJoined int64 = 104
)

// Join rejection reasons.
const (
	RejectMatchFull     = "match_full"
	RejectMatchOver     = "match_over"
	RejectAlreadyJoined = "already_joined"
)
