package handler

// Envelope wraps every API response body.
type Envelope struct {
	Message string `json:"message"`
	Success bool   `json:"success"`
	Data    any    `json:"data"`
	Kind    string `json:"kind,omitempty"`
}

func ok(message string, data any) Envelope {
	return Envelope{Message: message, Success: true, Data: data}
}

type userResponse struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Email        string  `json:"email"`
	IsActive     bool    `json:"isActive"`
	Role         string  `json:"role"`
	RefreshToken *string `json:"refreshToken"`
}

type tokenResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}
