package dto

import "time"

// ============ Общие структуры ============

type ErrorResponse struct {
	Status  string `json:"status"`
	Kind    string `json:"kind,omitempty"` // GuardFailed, ConflictingTransition, NotFound, OverpaymentRejected, InvalidAmount, Transient
	Message string `json:"message"`
}

type SuccessResponse struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// ============ Сессии ============

type SessionResponse struct {
	ID               uint       `json:"id"`
	ClientCardNumber string     `json:"client_card_number"`
	CarNumber        string     `json:"car_number"`
	CarModel         string     `json:"car_model,omitempty"`
	CarColor         string     `json:"car_color,omitempty"`
	ClientName       string     `json:"client_name,omitempty"`
	ClientPhone      string     `json:"client_phone,omitempty"`
	HasSubscription  bool       `json:"has_subscription"`
	Status           string     `json:"status"`
	StatusLabel      string     `json:"status_label"`
	StatusColor      string     `json:"status_color"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
	ParkingSpot      string     `json:"parking_spot,omitempty"`
	ParkingCard      string     `json:"parking_card,omitempty"`
	TariffID         *uint      `json:"tariff_id,omitempty"`
	CalculatedCost   *float64   `json:"calculated_cost,omitempty"`
	PaidAmount       float64    `json:"paid_amount"`
	PaymentMethod    string     `json:"payment_method,omitempty"`
	PaymentDate      *time.Time `json:"payment_date,omitempty"`
	EmployeeID       *uint      `json:"employee_id,omitempty"`

	Photos []PhotoResponse `json:"photos,omitempty"` // только для GET одной сессии
}

type SessionListResponse struct {
	Sessions []SessionResponse `json:"sessions"`
	Total    int               `json:"total"`
}

type CreateSessionRequest struct {
	ClientCardNumber string `json:"client_card_number" binding:"required"`
	CarNumber        string `json:"car_number" binding:"required"`
	CarModel         string `json:"car_model"`
	CarColor         string `json:"car_color"`
	ClientName       string `json:"client_name"`
	ClientPhone      string `json:"client_phone"`
	TariffID         *uint  `json:"tariff_id"`
}

type TransitionRequest struct {
	Status      string `json:"status" binding:"required"`
	EmployeeID  *uint  `json:"employee_id"`
	Note        string `json:"note"`
	ParkingSpot string `json:"parking_spot"`
	ParkingCard string `json:"parking_card"`
	TariffID    *uint  `json:"tariff_id"`
}

type AssignRequest struct {
	EmployeeID uint `json:"employee_id" binding:"required"`
}

type StatusLogEntryResponse struct {
	FromStatus string    `json:"from_status"`
	ToStatus   string    `json:"to_status"`
	EmployeeID *uint     `json:"employee_id,omitempty"`
	Note       string    `json:"note,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// ============ Фотографии ============

type PhotoResponse struct {
	ID          uint      `json:"id"`
	Stage       string    `json:"stage"`
	URL         string    `json:"url"`
	Filename    string    `json:"filename"`
	Size        int64     `json:"size"`
	ContentType string    `json:"content_type"`
	CreatedAt   time.Time `json:"created_at"`
}

// ============ Платежи ============

type RecordPaymentRequest struct {
	Method    string  `json:"method" binding:"required,oneof=cash card online transfer client_app"`
	Amount    float64 `json:"amount" binding:"required"`
	Reference string  `json:"reference"`
}

type PaymentSummaryResponse struct {
	CalculatedCost  float64 `json:"calculated_cost"`
	PaidAmount      float64 `json:"paid_amount"`
	RemainingAmount float64 `json:"remaining_amount"`
}

// ============ Справочники ============

type TariffResponse struct {
	ID           uint    `json:"id"`
	ParkingLotID uint    `json:"parking_lot_id"`
	Name         string  `json:"name"`
	Type         string  `json:"type"`
	PricePerHour float64 `json:"price_per_hour"`
	PricePerDay  float64 `json:"price_per_day"`
	MinHours     int     `json:"min_hours"`
	MaxHours     *int    `json:"max_hours,omitempty"`
	FreeMinutes  int     `json:"free_minutes"`
}

type EmployeeResponse struct {
	ID       uint   `json:"id"`
	FullName string `json:"full_name"`
	Phone    string `json:"phone,omitempty"`
	Role     string `json:"role"`
}

type SubscriptionLookupResponse struct {
	Active      bool   `json:"active"`
	ClientName  string `json:"client_name,omitempty"`
	ClientPhone string `json:"client_phone,omitempty"`
}

// ============ Пользователи ============

type UserResponse struct {
	ID       uint   `json:"id"`
	Login    string `json:"login"`
	FullName string `json:"full_name"`
	Role     int    `json:"role"`
}

type RegisterRequest struct {
	Login    string `json:"login" binding:"required,min=3,max=50"`
	Password string `json:"password" binding:"required,min=6"`
	FullName string `json:"full_name" binding:"required"`
	Role     int    `json:"role"`
}

type UpdateUserRequest struct {
	FullName string `json:"full_name"`
	Password string `json:"password" binding:"omitempty,min=6"`
}

type LoginRequest struct {
	Login    string `json:"login" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}
