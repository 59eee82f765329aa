package http

// Register godoc
// @Summary Register a new user
// @Description Create a new account with the user role
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body object{username=string,password=string} true "User registration data"
// @Success 201 {object} Response{data=object{id=int,username=string,role=string,is_active=bool,created_at=string,updated_at=string}}
// @Failure 400 {object} Response
// @Failure 409 {object} Response
// @Router /auth/register [post]
func (h *UserHandler) RegisterDoc() {}

// Login godoc
// @Summary User login
// @Description Authenticate user and get JWT token
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body object{username=string,password=string} true "Login credentials"
// @Success 200 {object} Response{data=object{token=string,user=object}}
// @Failure 401 {object} Response
// @Failure 403 {object} Response
// @Router /auth/login [post]
func (h *UserHandler) LoginDoc() {}

// GetProfile godoc
// @Summary Get current user profile
// @Description Get authenticated user's profile information
// @Tags Users
// @Security BearerAuth
// @Produce json
// @Success 200 {object} Response{data=object{id=int,username=string,role=string,is_active=bool}}
// @Failure 401 {object} Response
// @Failure 404 {object} Response
// @Router /api/users/me [get]
func (h *UserHandler) GetProfileDoc() {}
