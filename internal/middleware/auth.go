package middleware

import (
	"crypto/subtle"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/t3labs/time-tracker-api/internal/apierrors"
	"github.com/t3labs/time-tracker-api/internal/models"
	"github.com/t3labs/time-tracker-api/internal/repository"
	"github.com/t3labs/time-tracker-api/internal/token"
)

// APIKeyHeader carries the static admin key.
const APIKeyHeader = "X-API-Key"

const (
	contextKeyPrincipal = "principal"
	contextKeyEmployee  = "current_employee"
)

// PrincipalKind tags the resolved caller identity.
type PrincipalKind string

const (
	PrincipalAdmin    PrincipalKind = "admin"
	PrincipalEmployee PrincipalKind = "employee"
)

// Principal is the caller identity resolved once per request and consulted
// by every handler instead of re-deriving the role from headers.
type Principal struct {
	Kind       PrincipalKind
	EmployeeID string
}

// Authenticator resolves request credentials into a Principal. Either the
// static admin key matches byte-for-byte, or a bearer token verifies and
// references a currently active employee.
type Authenticator struct {
	adminKey  string
	tokens    *token.Manager
	employees repository.EmployeeRepository
}

// NewAuthenticator creates a new Authenticator.
func NewAuthenticator(adminKey string, tokens *token.Manager, employees repository.EmployeeRepository) *Authenticator {
	return &Authenticator{
		adminKey:  adminKey,
		tokens:    tokens,
		employees: employees,
	}
}

// RequireAdmin admits only requests carrying the configured admin API key.
func (a *Authenticator) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader(APIKeyHeader)
		if a.adminKey == "" || subtle.ConstantTimeCompare([]byte(key), []byte(a.adminKey)) != 1 {
			apierrors.Unauthorized(c, "Invalid or missing admin API key")
			c.Abort()
			return
		}

		c.Set(contextKeyPrincipal, Principal{Kind: PrincipalAdmin})
		c.Next()
	}
}

// RequireEmployee admits only requests carrying a valid bearer token whose
// employee is currently active. Deactivation therefore shuts out future
// requests even while issued tokens remain unexpired.
func (a *Authenticator) RequireEmployee() gin.HandlerFunc {
	return func(c *gin.Context) {
		employee, ok := a.resolveEmployee(c)
		if !ok {
			apierrors.Unauthorized(c, "Could not validate credentials")
			c.Abort()
			return
		}

		c.Set(contextKeyPrincipal, Principal{Kind: PrincipalEmployee, EmployeeID: employee.ID})
		c.Set(contextKeyEmployee, employee)
		c.Next()
	}
}

// RequireAdminOrEmployee admits requests carrying either the admin API key
// or a valid employee bearer token. The admin key is checked first, so a
// request carrying both is treated as an admin. Handlers narrow what an
// employee principal may access.
func (a *Authenticator) RequireAdminOrEmployee() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader(APIKeyHeader)
		if a.adminKey != "" && subtle.ConstantTimeCompare([]byte(key), []byte(a.adminKey)) == 1 {
			c.Set(contextKeyPrincipal, Principal{Kind: PrincipalAdmin})
			c.Next()
			return
		}

		employee, ok := a.resolveEmployee(c)
		if !ok {
			apierrors.Unauthorized(c, "Could not validate credentials")
			c.Abort()
			return
		}

		c.Set(contextKeyPrincipal, Principal{Kind: PrincipalEmployee, EmployeeID: employee.ID})
		c.Set(contextKeyEmployee, employee)
		c.Next()
	}
}

func (a *Authenticator) resolveEmployee(c *gin.Context) (*models.Employee, bool) {
	header := c.GetHeader("Authorization")
	bearer, found := strings.CutPrefix(header, "Bearer ")
	if !found || bearer == "" {
		return nil, false
	}

	employeeID, err := a.tokens.Verify(bearer)
	if err != nil {
		return nil, false
	}

	employee, err := a.employees.FindByID(c.Request.Context(), employeeID)
	if err != nil || employee.Status != models.EmployeeStatusActive {
		return nil, false
	}
	return employee, true
}

// GetPrincipal retrieves the resolved principal from context.
func GetPrincipal(c *gin.Context) (Principal, bool) {
	value, exists := c.Get(contextKeyPrincipal)
	if !exists {
		return Principal{}, false
	}
	principal, ok := value.(Principal)
	return principal, ok
}

// GetCurrentEmployee retrieves the authenticated employee from context.
func GetCurrentEmployee(c *gin.Context) (*models.Employee, bool) {
	value, exists := c.Get(contextKeyEmployee)
	if !exists {
		return nil, false
	}
	employee, ok := value.(*models.Employee)
	return employee, ok
}
