package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/you/storeapi/domain"
	"github.com/you/storeapi/internal/http/middleware"
)

var (
	errPolicyExists  = domain.NewAppError(http.StatusConflict, domain.CodeAlreadyExists, "This policy already exists.")
	errPolicyMissing = domain.NewAppError(http.StatusNotFound, domain.CodeNotFound, "This policy does not exist.")
)

// PolicyHandlers manages the casbin route policies
type PolicyHandlers struct {
	policies domain.PolicyService
}

// NewPolicyHandlers creates new policy handlers
func NewPolicyHandlers(policies domain.PolicyService) *PolicyHandlers {
	return &PolicyHandlers{policies: policies}
}

// List returns every policy as [subject, resource, action]
func (h *PolicyHandlers) List(c *gin.Context) {
	policies, err := h.policies.GetPolicies()
	if err != nil {
		middleware.Fail(c, err)
		return
	}
	if policies == nil {
		policies = [][]string{}
	}
	success(c, http.StatusOK, "", policies)
}

// Add grants a role access to a resource pattern and action
func (h *PolicyHandlers) Add(c *gin.Context) {
	var req PolicyRequest
	if err := bind(c, &req); err != nil {
		middleware.Fail(c, err)
		return
	}

	added, err := h.policies.AddPolicy(domain.Role(req.Role), req.Resource, req.Action)
	if err != nil {
		middleware.Fail(c, err)
		return
	}
	if !added {
		middleware.Fail(c, errPolicyExists)
		return
	}
	success(c, http.StatusCreated, "Policy added successfully.", req)
}

// Remove revokes a policy
func (h *PolicyHandlers) Remove(c *gin.Context) {
	var req PolicyRequest
	if err := bind(c, &req); err != nil {
		middleware.Fail(c, err)
		return
	}

	removed, err := h.policies.RemovePolicy(domain.Role(req.Role), req.Resource, req.Action)
	if err != nil {
		middleware.Fail(c, err)
		return
	}
	if !removed {
		middleware.Fail(c, errPolicyMissing)
		return
	}
	success(c, http.StatusOK, "Policy removed successfully.", req)
}
