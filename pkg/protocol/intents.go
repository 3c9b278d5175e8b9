package protocol

// Intents is the bitfield of event groups a client subscribes to on Identify.
type Intents int64

// Privileged intents, the only ones the mock gates on.
const (
	IntentGuildMembers   Intents = 1 << 1
	IntentGuildPresences Intents = 1 << 8
	IntentMessageContent Intents = 1 << 15
)

// IntentsAll has every defined intent bit set.
const IntentsAll Intents = 1<<25 - 1

// Contains reports whether every bit of other is set in i.
func (i Intents) Contains(other Intents) bool {
	return i&other == other
}

// ApplicationFlags is the bot application's flag bitfield; the gateway
// whitelist bits decide which privileged intents an Identify may request.
type ApplicationFlags int64

const (
	FlagGatewayPresence              ApplicationFlags = 1 << 12
	FlagGatewayPresenceLimited       ApplicationFlags = 1 << 13
	FlagGatewayGuildMembers          ApplicationFlags = 1 << 14
	FlagGatewayGuildMembersLimited   ApplicationFlags = 1 << 15
	FlagGatewayMessageContent        ApplicationFlags = 1 << 18
	FlagGatewayMessageContentLimited ApplicationFlags = 1 << 19
)

// Intersects reports whether any bit of other is set in f.
func (f ApplicationFlags) Intersects(other ApplicationFlags) bool {
	return f&other != 0
}

// AllowedIntents computes the intents an application may request: everything,
// minus the privileged intents its flags do not whitelist.
func (f ApplicationFlags) AllowedIntents() Intents {
	allowed := IntentsAll
	if !f.Intersects(FlagGatewayPresence | FlagGatewayPresenceLimited) {
		allowed &^= IntentGuildPresences
	}
	if !f.Intersects(FlagGatewayGuildMembers | FlagGatewayGuildMembersLimited) {
		allowed &^= IntentGuildMembers
	}
	if !f.Intersects(FlagGatewayMessageContent | FlagGatewayMessageContentLimited) {
		allowed &^= IntentMessageContent
	}
	return allowed
}
