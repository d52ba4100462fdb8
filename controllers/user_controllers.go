package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/clipper-lms/services"
	"github.com/yeremiapane/clipper-lms/utils"
)

type UserController struct {
	Users *services.UserService
}

func NewUserController(users *services.UserService) *UserController {
	return &UserController{Users: users}
}

// GetAllUsers is admin only.
func (uc *UserController) GetAllUsers(c *gin.Context) {
	identity, ok := identityOrAbort(c)
	if !ok {
		return
	}

	users, err := uc.Users.List(identity)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Users retrieved successfully", gin.H{"users": users})
}

func (uc *UserController) GetUserByID(c *gin.Context) {
	identity, ok := identityOrAbort(c)
	if !ok {
		return
	}
	userID, ok := parseID(c, "user")
	if !ok {
		return
	}

	user, err := uc.Users.Get(identity, userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "User retrieved successfully", gin.H{"user": user})
}

func (uc *UserController) UpdateUser(c *gin.Context) {
	identity, ok := identityOrAbort(c)
	if !ok {
		return
	}
	userID, ok := parseID(c, "user")
	if !ok {
		return
	}

	var body struct {
		Name  *string `json:"name"`
		Email *string `json:"email" binding:"omitempty,email"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	user, err := uc.Users.Update(identity, userID, services.UserPatch{Name: body.Name, Email: body.Email})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "User updated successfully", gin.H{"user": user})
}

// DeleteUser is admin only; admins cannot delete themselves.
func (uc *UserController) DeleteUser(c *gin.Context) {
	identity, ok := identityOrAbort(c)
	if !ok {
		return
	}
	userID, ok := parseID(c, "user")
	if !ok {
		return
	}

	if err := uc.Users.Delete(identity, userID); err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "User deleted successfully", nil)
}

func (uc *UserController) GetMyStats(c *gin.Context) {
	identity, ok := identityOrAbort(c)
	if !ok {
		return
	}

	stats, err := uc.Users.Stats(identity)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "User statistics retrieved successfully", gin.H{"stats": stats})
}
