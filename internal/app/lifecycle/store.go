package lifecycle

import "github.com/nikita-666666/valet-parking-app-sub000/internal/app/ds"

// Store — персистентность state machine. Реализуется repository.Repository,
// в тестах — памятью. SessionByID и SessionByCard возвращают сессию с
// загруженными фотографиями и платежами; отсутствие записи — ошибка
// с kind NotFound.
type Store interface {
	CreateSession(s *ds.Session) error
	SessionByID(id uint) (*ds.Session, error)
	SessionByCard(card string) (*ds.Session, error)
	SaveSession(s *ds.Session) error

	AppendPhoto(p *ds.SessionPhoto) error
	DeletePhoto(sessionID, photoID uint) error

	AppendStatusLog(e *ds.SessionStatusLog) error
	StatusLog(sessionID uint) ([]ds.SessionStatusLog, error)

	TariffByID(id uint) (*ds.Tariff, error)
	DefaultGuestTariff() (*ds.Tariff, error)
	EmployeeByID(id uint) (*ds.Employee, error)
	SubscriptionByCar(carNumber string) (*ds.Subscription, error)
}
