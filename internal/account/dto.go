package account

// RegisterForm 注册表单
type RegisterForm struct {
	Username        string `form:"username" json:"username" binding:"required,min=3,max=50"`
	Email           string `form:"email" json:"email" binding:"required,email,max=100"`
	Password        string `form:"password" json:"password" binding:"required,min=6,max=100"`
	PasswordConfirm string `form:"password_confirm" json:"password_confirm" binding:"required,eqfield=Password"`
}

// LoginForm 登录表单，Login 可以是用户名或邮箱
type LoginForm struct {
	Login    string `form:"login" json:"login" binding:"required"`
	Password string `form:"password" json:"password" binding:"required"`
	Next     string `form:"next" json:"next"`
}
