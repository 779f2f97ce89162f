package handler

import "github.com/userhub/auth-server/internal/core/ports"

func toUserResponse(v *ports.UserView) userResponse {
	return userResponse{
		ID:           v.ID,
		Name:         v.Name,
		Email:        v.Email,
		IsActive:     v.IsActive,
		Role:         v.Role,
		RefreshToken: v.RefreshToken,
	}
}

func toUserResponses(views []ports.UserView) []userResponse {
	out := make([]userResponse, 0, len(views))
	for i := range views {
		out = append(out, toUserResponse(&views[i]))
	}
	return out
}

func toTokenResponse(p *ports.TokenPair) tokenResponse {
	return tokenResponse{AccessToken: p.AccessToken, RefreshToken: p.RefreshToken}
}
