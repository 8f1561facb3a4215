package handler

import (
	"net/http"
	"strings"

	"finance-tracker/internal/models"
	"finance-tracker/internal/policy"
	"finance-tracker/internal/util"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// UserHandler serves admin-only user management. Routes are mounted
// behind RequireAdmin; the handlers re-check the policy themselves so
// the rule does not depend on route wiring alone.
type UserHandler struct {
	DB *gorm.DB
}

func NewUserHandler(db *gorm.DB) *UserHandler {
	return &UserHandler{DB: db}
}

// manager pulls the principal and enforces the user-management policy.
func manager(c *gin.Context) (policy.Principal, bool) {
	p, ok := principalFrom(c)
	if !ok {
		return policy.Principal{}, false
	}
	if !policy.CanManageUsers(p) {
		util.Error(c, http.StatusForbidden, "admin access required")
		return policy.Principal{}, false
	}
	return p, true
}

type createUserReq struct {
	Email    string `json:"email" binding:"required,email"`
	Name     string `json:"name" binding:"required,min=2,max=50"`
	Password string `json:"password" binding:"required,min=6"`
	Role     string `json:"role" binding:"required,oneof=USER ADMIN"`
}

type updateUserReq struct {
	Name     *string `json:"name"`
	Role     *string `json:"role"`
	Password *string `json:"password"`
}

func safeUser(u *models.User) gin.H {
	return gin.H{
		"id":         u.ID,
		"email":      u.Email,
		"name":       u.Name,
		"role":       u.Role,
		"created_at": u.CreatedAt,
	}
}

func (h *UserHandler) List(c *gin.Context) {
	if _, ok := manager(c); !ok {
		return
	}

	var users []models.User
	if err := h.DB.Order("created_at DESC").Find(&users).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, "failed to list users")
		return
	}

	out := make([]gin.H, 0, len(users))
	for i := range users {
		out = append(out, safeUser(&users[i]))
	}
	c.JSON(http.StatusOK, out)
}

func (h *UserHandler) Create(c *gin.Context) {
	if _, ok := manager(c); !ok {
		return
	}

	var req createUserReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, "invalid user data")
		return
	}

	req.Email = strings.TrimSpace(req.Email)

	var count int64
	if err := h.DB.Model(&models.User{}).
		Where("LOWER(email) = LOWER(?)", req.Email).
		Count(&count).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, "failed to check email")
		return
	}
	if count > 0 {
		util.Error(c, http.StatusBadRequest, "this email is already in use")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), 10)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, "failed to hash password")
		return
	}

	user := models.User{
		Email:        req.Email,
		Name:         req.Name,
		PasswordHash: string(hash),
		Role:         req.Role,
	}
	if err := h.DB.Create(&user).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, "failed to create user")
		return
	}
	c.JSON(http.StatusCreated, safeUser(&user))
}

func (h *UserHandler) Update(c *gin.Context) {
	if _, ok := manager(c); !ok {
		return
	}
	id, ok := idParam(c)
	if !ok {
		return
	}

	var req updateUserReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, "invalid user data")
		return
	}

	var user models.User
	if err := h.DB.First(&user, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			util.Error(c, http.StatusNotFound, "user not found")
		} else {
			util.Error(c, http.StatusInternalServerError, "failed to load user")
		}
		return
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if len(name) < 2 || len(name) > 50 {
			util.ErrorDetails(c, http.StatusBadRequest, "invalid data",
				gin.H{"name": "must be 2-50 characters"})
			return
		}
		user.Name = name
	}
	if req.Role != nil {
		if *req.Role != models.RoleAdmin && *req.Role != models.RoleUser {
			util.ErrorDetails(c, http.StatusBadRequest, "invalid data",
				gin.H{"role": "must be USER or ADMIN"})
			return
		}
		user.Role = *req.Role
	}
	if req.Password != nil {
		if len(*req.Password) < 6 {
			util.ErrorDetails(c, http.StatusBadRequest, "invalid data",
				gin.H{"password": "must be at least 6 characters"})
			return
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(*req.Password), 10)
		if err != nil {
			util.Error(c, http.StatusInternalServerError, "failed to hash password")
			return
		}
		user.PasswordHash = string(hash)
	}

	if err := h.DB.Save(&user).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, "failed to update user")
		return
	}
	c.JSON(http.StatusOK, safeUser(&user))
}

// Delete removes a user together with their operations and derived
// summary rows. An admin cannot delete their own account here.
func (h *UserHandler) Delete(c *gin.Context) {
	p, ok := principalFrom(c)
	if !ok {
		return
	}
	id, ok := idParam(c)
	if !ok {
		return
	}

	if !policy.CanDeleteUser(p, id) {
		util.Error(c, http.StatusForbidden, "cannot delete your own account")
		return
	}

	var user models.User
	if err := h.DB.First(&user, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			util.Error(c, http.StatusNotFound, "user not found")
		} else {
			util.Error(c, http.StatusInternalServerError, "failed to load user")
		}
		return
	}

	err := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", id).Delete(&models.Operation{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", id).Delete(&models.DailySummary{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", id).Delete(&models.WeeklySummary{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", id).Delete(&models.MonthlySummary{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.User{}, id).Error
	})
	if err != nil {
		util.Error(c, http.StatusInternalServerError, "failed to delete user")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "user deleted"})
}
