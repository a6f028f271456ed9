package types

type UserResponse struct {
	ID        uint   `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

type RegisterResponse struct {
	UserResponse
	Tokens TokenPair `json:"tokens"`
}

type ProjectResponse struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

type ContractResponse struct {
	ID                  uint            `json:"id"`
	User                uint            `json:"user"`
	Project             ProjectResponse `json:"project"`
	HourlyPrice         string          `json:"hourly_price"`
	HourlyPriceCurrency string          `json:"hourly_price_currency"`
}

type TimelogResponse struct {
	ID          uint             `json:"id"`
	Date        string           `json:"date"`
	HoursWorked string           `json:"hours_worked"`
	Contract    ContractResponse `json:"contract"`
}

// Page is the envelope every list endpoint returns.
type Page[T any] struct {
	Count    int64   `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []T     `json:"results"`
}

type ErrorResponse struct {
	Error  string              `json:"error"`
	Fields map[string][]string `json:"fields,omitempty"`
}
