package ds

// SessionStatus — статус сессии обслуживания автомобиля.
// Статусы двигаются только вперёд по рёбрам AllowedTransitions,
// cancelled достижим из любого нетерминального статуса.
type SessionStatus string

const (
	StatusCreated          SessionStatus = "created"
	StatusCarAccepted      SessionStatus = "car_accepted"
	StatusEnRoute          SessionStatus = "en_route"
	StatusParked           SessionStatus = "parked"
	StatusReturnRequested  SessionStatus = "return_requested"
	StatusReturnAccepted   SessionStatus = "return_accepted"
	StatusReturnStarted    SessionStatus = "return_started"
	StatusReturnDelivering SessionStatus = "return_delivering"
	StatusCompleted        SessionStatus = "completed"
	StatusCancelled        SessionStatus = "cancelled"
)

// AllowedTransitions — направленный граф допустимых переходов статусов.
var AllowedTransitions = map[SessionStatus][]SessionStatus{
	StatusCreated:          {StatusCarAccepted, StatusCancelled},
	StatusCarAccepted:      {StatusEnRoute, StatusCancelled},
	StatusEnRoute:          {StatusParked, StatusCancelled},
	StatusParked:           {StatusReturnRequested, StatusCancelled},
	StatusReturnRequested:  {StatusReturnAccepted, StatusCancelled},
	StatusReturnAccepted:   {StatusReturnStarted, StatusCancelled},
	StatusReturnStarted:    {StatusReturnDelivering, StatusCancelled},
	StatusReturnDelivering: {StatusCompleted, StatusCancelled},
	// Терминальные статусы: дальнейшие переходы запрещены
	StatusCompleted: {},
	StatusCancelled: {},
}

// statusOrder — порядковый номер статуса в жизненном цикле.
// Используется для проверки "стадия уже пройдена" (фото-гейты).
var statusOrder = map[SessionStatus]int{
	StatusCreated:          0,
	StatusCarAccepted:      1,
	StatusEnRoute:          2,
	StatusParked:           3,
	StatusReturnRequested:  4,
	StatusReturnAccepted:   5,
	StatusReturnStarted:    6,
	StatusReturnDelivering: 7,
	StatusCompleted:        8,
	StatusCancelled:        9,
}

// CanTransition проверяет, допустим ли переход from -> to.
func CanTransition(from, to SessionStatus) bool {
	for _, s := range AllowedTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// IsTerminal возвращает true для завершённых и отменённых сессий.
func (s SessionStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// IsValid проверяет, что статус входит в известный набор.
func (s SessionStatus) IsValid() bool {
	_, ok := statusOrder[s]
	return ok
}

// Order возвращает порядковый номер статуса (-1 для неизвестного).
func (s SessionStatus) Order() int {
	if n, ok := statusOrder[s]; ok {
		return n
	}
	return -1
}

// Label возвращает человекочитаемую подпись статуса.
// Switch без default: новый статус не должен молча проваливаться.
func (s SessionStatus) Label() string {
	switch s {
	case StatusCreated:
		return "Создана"
	case StatusCarAccepted:
		return "Автомобиль принят"
	case StatusEnRoute:
		return "Едет на парковку"
	case StatusParked:
		return "Припаркован"
	case StatusReturnRequested:
		return "Запрошена подача"
	case StatusReturnAccepted:
		return "Подача принята"
	case StatusReturnStarted:
		return "Подача начата"
	case StatusReturnDelivering:
		return "Автомобиль подаётся"
	case StatusCompleted:
		return "Завершена"
	case StatusCancelled:
		return "Отменена"
	}
	return string(s)
}

// Color возвращает цвет статуса для клиентских интерфейсов.
func (s SessionStatus) Color() string {
	switch s {
	case StatusCreated, StatusCarAccepted, StatusEnRoute:
		return "blue"
	case StatusParked:
		return "green"
	case StatusReturnRequested, StatusReturnAccepted, StatusReturnStarted, StatusReturnDelivering:
		return "orange"
	case StatusCompleted:
		return "gray"
	case StatusCancelled:
		return "red"
	}
	return "gray"
}
