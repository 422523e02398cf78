package models

type Role string

const (
	RoleUser      Role = "user"
	RoleModerator Role = "moderator"
	RoleAdmin     Role = "admin"
)

var roleRank = map[Role]int{
	RoleUser:      0,
	RoleModerator: 1,
	RoleAdmin:     2,
}

// Rank returns the position of r in the role hierarchy. Unknown roles rank as
// RoleUser.
func (r Role) Rank() int {
	if rank, ok := roleRank[r]; ok {
		return rank
	}
	return roleRank[RoleUser]
}

func (r Role) AtLeast(min Role) bool {
	return r.Rank() >= min.Rank()
}
