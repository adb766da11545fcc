package role

// Role — роль пользователя в системе.
type Role int

const (
	Client Role = iota // клиентское приложение
	Valet              // сотрудник-валет
	Admin              // администратор паркинга
)

func (r Role) String() string {
	switch r {
	case Client:
		return "client"
	case Valet:
		return "valet"
	case Admin:
		return "admin"
	}
	return "unknown"
}
