// serializers.go - Request input structs and the public user representation

package handlers

import (
	"go-user-service/models"
)

// AddressResponse is the read-only nested address representation.
type AddressResponse struct {
	FullAddress string  `json:"full_address"`
	PostalCode  *string `json:"postal_code"`
	City        string  `json:"city"`
}

// UserResponse is the public user representation. The password hash is never included.
type UserResponse struct {
	ID        uint              `json:"id"`
	Username  string            `json:"username"`
	Email     string            `json:"email"`
	FirstName string            `json:"first_name"`
	LastName  string            `json:"last_name"`
	Phone     *string           `json:"phone"`
	ImageURL  *string           `json:"image_url"`
	Role      models.Role       `json:"role"`
	Addresses []AddressResponse `json:"addresses"`
}

func NewUserResponse(u *models.User) UserResponse {
	addrs := make([]AddressResponse, 0, len(u.Addresses))
	for _, a := range u.Addresses {
		addrs = append(addrs, AddressResponse{FullAddress: a.FullAddress, PostalCode: a.PostalCode, City: a.City})
	}
	return UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Phone:     u.Phone,
		ImageURL:  u.ImageURL,
		Role:      u.Role,
		Addresses: addrs,
	}
}

// RegisterInput is the registration body. confirm_password is checked and then discarded.
type RegisterInput struct {
	Username        string `json:"username" form:"username" binding:"required,max=150,username"`
	Email           string `json:"email" form:"email" binding:"required,email,max=254"`
	Password        string `json:"password" form:"password" binding:"required,maxbytes=72"`
	ConfirmPassword string `json:"confirm_password" form:"confirm_password" binding:"required"`
	FirstName       string `json:"first_name" form:"first_name" binding:"max=150"`
	LastName        string `json:"last_name" form:"last_name" binding:"max=150"`
}

// ProfileInput holds the writable profile fields. Absent fields are nil and left untouched;
// id, role, is_active, password and addresses are not part of it and are ignored.
type ProfileInput struct {
	Username  *string `json:"username" form:"username" binding:"omitempty,max=150,username"`
	Email     *string `json:"email" form:"email" binding:"omitempty,email,max=254"`
	FirstName *string `json:"first_name" form:"first_name" binding:"omitempty,max=150"`
	LastName  *string `json:"last_name" form:"last_name" binding:"omitempty,max=150"`
	Phone     *string `json:"phone" form:"phone" binding:"omitempty,max=50"`
	ImageURL  *string `json:"image_url" form:"image_url" binding:"omitempty,max=255"`
}

type TokenObtainInput struct {
	Username string `json:"username" form:"username" binding:"required"`
	Password string `json:"password" form:"password" binding:"required"`
}

type TokenVerifyInput struct {
	Token string `json:"token" form:"token" binding:"required"`
}
