// Package mockdata fabricates the domain entities the gateway hands to
// clients: guild stubs for Ready and full entity payloads for dispatches.
//
// All randomness flows through a seeded math/rand source; only the snowflake
// timestamp component varies between runs with the same seed. The protocol
// core never generates entities itself; it consumes what this package
// produces as opaque input, which keeps the state machine and interpreter
// deterministic under test.
package mockdata

import (
	"fmt"
	"math/rand"
	"strconv"
	"time"

	"github.com/gatewaymock/gatewaymock/pkg/protocol"
)

// discordEpoch is the millisecond origin for snowflake timestamps.
const discordEpoch = 1420070400000

// Generator fabricates entities from a seeded random source. Not safe for
// concurrent use; give each consumer its own Generator.
type Generator struct {
	r *rand.Rand
}

// New creates a Generator from a seed.
func New(seed int64) *Generator {
	return &Generator{r: rand.New(rand.NewSource(seed))}
}

// Snowflake produces an id with a plausible timestamp component.
func (g *Generator) Snowflake() string {
	ts := time.Now().UnixMilli() - discordEpoch
	// 41 bits timestamp, 22 bits of worker/process/increment noise.
	n := (ts << 22) | int64(g.r.Intn(1<<22))
	return strconv.FormatInt(n, 10)
}

// UnavailableGuilds produces n guild stubs for the Ready dispatch.
func (g *Generator) UnavailableGuilds(n int) []protocol.UnavailableGuild {
	guilds := make([]protocol.UnavailableGuild, 0, n)
	for i := 0; i < n; i++ {
		guilds = append(guilds, protocol.UnavailableGuild{
			ID:          g.Snowflake(),
			Unavailable: true,
		})
	}
	return guilds
}

// Guild is a fabricated guild payload, shaped like a GUILD_CREATE body.
type Guild struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	OwnerID     string    `json:"owner_id"`
	MemberCount int       `json:"member_count"`
	Channels    []Channel `json:"channels"`
	Members     []Member  `json:"members"`
}

// Channel is a fabricated guild channel.
type Channel struct {
	ID   string `json:"id"`
	Type int    `json:"type"`
	Name string `json:"name"`
}

// Member is a fabricated guild member wrapping a user.
type Member struct {
	User User `json:"user"`
}

// User is a fabricated user.
type User struct {
	ID            string `json:"id"`
	Username      string `json:"username"`
	Discriminator string `json:"discriminator"`
	Bot           bool   `json:"bot"`
}

// Guild fabricates a guild with the given member and channel counts.
func (g *Generator) Guild(members, channels int) Guild {
	guild := Guild{
		ID:          g.Snowflake(),
		Name:        fmt.Sprintf("guild-%04d", g.r.Intn(10000)),
		MemberCount: members,
	}
	for i := 0; i < channels; i++ {
		guild.Channels = append(guild.Channels, Channel{
			ID:   g.Snowflake(),
			Type: 0, // guild text
			Name: fmt.Sprintf("channel-%d", i),
		})
	}
	for i := 0; i < members; i++ {
		guild.Members = append(guild.Members, Member{User: g.User()})
	}
	if members > 0 {
		guild.OwnerID = guild.Members[0].User.ID
	} else {
		guild.OwnerID = g.Snowflake()
	}
	return guild
}

// User fabricates a user.
func (g *Generator) User() User {
	return User{
		ID:            g.Snowflake(),
		Username:      fmt.Sprintf("user-%04d", g.r.Intn(10000)),
		Discriminator: fmt.Sprintf("%04d", g.r.Intn(10000)),
	}
}
