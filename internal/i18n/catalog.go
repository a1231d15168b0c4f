package i18n

// Keys usadas por el login hosteado y los emails.
const (
	MsgInvalidPassword     = "invalid_password"
	MsgUserNotFound        = "user_not_found"
	MsgCodeExpired         = "code_expired"
	MsgEmailNotVerified    = "email_not_verified"
	MsgSignupDisabled      = "signup_disabled"
	MsgUserExists          = "user_exists"
	MsgPasswordPolicy      = "password_policy"
	MsgPasswordsDontMatch  = "passwords_dont_match"
	MsgInvalidEmail        = "invalid_email"
	MsgTooManyRequests     = "too_many_requests"
	MsgLoggedIn            = "logged_in"
	MsgLoggedOut           = "logged_out"
	MsgEmailVerified       = "email_verified"
	MsgPasswordChanged     = "password_changed"
	MsgResetSent           = "reset_sent"
	MsgCheckEmail          = "check_email"
	MsgSessionExpired      = "session_expired"
	MsgSomethingWentWrong  = "something_went_wrong"
	MsgVerifyEmailSent     = "verify_email_sent"
	MsgSubjectCode         = "subject_code"
	MsgSubjectLink         = "subject_link"
	MsgSubjectReset        = "subject_reset"
	MsgSubjectValidate     = "subject_validate"
	MsgBodyCode            = "body_code"
	MsgBodyLink            = "body_link"
	MsgBodyReset           = "body_reset"
	MsgBodyValidate        = "body_validate"
	MsgTitleEnterEmail     = "title_enter_email"
	MsgTitleEnterPassword  = "title_enter_password"
	MsgTitleEnterCode      = "title_enter_code"
	MsgTitleSignup         = "title_signup"
	MsgTitleResetPassword  = "title_reset_password"
	MsgTitleForgotPassword = "title_forgot_password"
	MsgTitleCheckAccount   = "title_check_account"
	MsgTitleInfo           = "title_info"

	LabelEmail           = "label_email"
	LabelPassword        = "label_password"
	LabelConfirmPassword = "label_confirm_password"
	LabelCode            = "label_code"
	LabelContinue        = "label_continue"
	LabelForgotPassword  = "label_forgot_password"
	LabelSignup          = "label_signup"
	LabelBack            = "label_back"
	LabelContinueWith    = "label_continue_with"
	LabelOtherAccount    = "label_other_account"
)

var catalog = map[string]map[string]string{
	English: {
		MsgInvalidPassword:     "Wrong email or password.",
		MsgUserNotFound:        "User not found.",
		MsgCodeExpired:         "The code is invalid or has expired.",
		MsgEmailNotVerified:    "Your email address is not verified. We sent you a new verification link.",
		MsgSignupDisabled:      "Sign ups are disabled for this application.",
		MsgUserExists:          "A user with this email already exists.",
		MsgPasswordPolicy:      "The password does not meet the requirements.",
		MsgPasswordsDontMatch:  "Passwords do not match.",
		MsgInvalidEmail:        "Enter a valid email address.",
		MsgTooManyRequests:     "Too many attempts. Try again later.",
		MsgLoggedIn:            "You are logged in.",
		MsgLoggedOut:           "You have been logged out.",
		MsgEmailVerified:       "Your email address has been verified.",
		MsgPasswordChanged:     "Your password has been changed.",
		MsgResetSent:           "If the account exists, we sent you an email with instructions.",
		MsgCheckEmail:          "Check your email, we sent a code to %s.",
		MsgSessionExpired:      "Your login session expired. Start again.",
		MsgSomethingWentWrong:  "Something went wrong.",
		MsgVerifyEmailSent:     "We sent a verification link to %s. Verify your email to continue.",
		MsgSubjectCode:         "Your login code for %s",
		MsgSubjectLink:         "Log in to %s",
		MsgSubjectReset:        "Reset your %s password",
		MsgSubjectValidate:     "Verify your email for %s",
		MsgBodyCode:            "Your code is %s. It expires in %d minutes.",
		MsgBodyLink:            "Use this link to log in: %s (or enter the code %s).",
		MsgBodyReset:           "Use this link to choose a new password: %s",
		MsgBodyValidate:        "Use this link to verify your email address: %s",
		MsgTitleEnterEmail:     "Log in",
		MsgTitleEnterPassword:  "Enter your password",
		MsgTitleEnterCode:      "Enter the code",
		MsgTitleSignup:         "Sign up",
		MsgTitleResetPassword:  "Choose a new password",
		MsgTitleForgotPassword: "Forgot your password?",
		MsgTitleCheckAccount:   "Continue as %s?",
		MsgTitleInfo:           "Information",
		LabelEmail:             "Email address",
		LabelPassword:          "Password",
		LabelConfirmPassword:   "Confirm password",
		LabelCode:              "Code",
		LabelContinue:          "Continue",
		LabelForgotPassword:    "Forgot password?",
		LabelSignup:            "Sign up",
		LabelBack:              "Back",
		LabelContinueWith:      "Continue with %s",
		LabelOtherAccount:      "Use another account",
	},
	Spanish: {
		MsgInvalidPassword:     "Email o contraseña incorrectos.",
		MsgUserNotFound:        "Usuario no encontrado.",
		MsgCodeExpired:         "El código es inválido o expiró.",
		MsgEmailNotVerified:    "Tu email no está verificado. Te enviamos un nuevo link de verificación.",
		MsgSignupDisabled:      "El registro está deshabilitado para esta aplicación.",
		MsgUserExists:          "Ya existe un usuario con este email.",
		MsgPasswordPolicy:      "La contraseña no cumple los requisitos.",
		MsgPasswordsDontMatch:  "Las contraseñas no coinciden.",
		MsgInvalidEmail:        "Ingresá un email válido.",
		MsgTooManyRequests:     "Demasiados intentos. Probá más tarde.",
		MsgLoggedIn:            "Iniciaste sesión.",
		MsgLoggedOut:           "Cerraste sesión.",
		MsgEmailVerified:       "Tu email fue verificado.",
		MsgPasswordChanged:     "Tu contraseña fue cambiada.",
		MsgResetSent:           "Si la cuenta existe, te enviamos un email con instrucciones.",
		MsgCheckEmail:          "Revisá tu email, enviamos un código a %s.",
		MsgSessionExpired:      "La sesión de login expiró. Empezá de nuevo.",
		MsgSomethingWentWrong:  "Algo salió mal.",
		MsgVerifyEmailSent:     "Enviamos un link de verificación a %s. Verificá tu email para continuar.",
		MsgSubjectCode:         "Tu código de acceso a %s",
		MsgSubjectLink:         "Ingresá a %s",
		MsgSubjectReset:        "Restablecé tu contraseña de %s",
		MsgSubjectValidate:     "Verificá tu email en %s",
		MsgBodyCode:            "Tu código es %s. Vence en %d minutos.",
		MsgBodyLink:            "Usá este link para ingresar: %s (o ingresá el código %s).",
		MsgBodyReset:           "Usá este link para elegir una nueva contraseña: %s",
		MsgBodyValidate:        "Usá este link para verificar tu email: %s",
		MsgTitleEnterEmail:     "Iniciar sesión",
		MsgTitleEnterPassword:  "Ingresá tu contraseña",
		MsgTitleEnterCode:      "Ingresá el código",
		MsgTitleSignup:         "Registrarse",
		MsgTitleResetPassword:  "Elegí una nueva contraseña",
		MsgTitleForgotPassword: "¿Olvidaste tu contraseña?",
		MsgTitleCheckAccount:   "¿Continuar como %s?",
		MsgTitleInfo:           "Información",
		LabelEmail:             "Email",
		LabelPassword:          "Contraseña",
		LabelConfirmPassword:   "Repetí la contraseña",
		LabelCode:              "Código",
		LabelContinue:          "Continuar",
		LabelForgotPassword:    "¿Olvidaste tu contraseña?",
		LabelSignup:            "Registrarse",
		LabelBack:              "Volver",
		LabelContinueWith:      "Continuar con %s",
		LabelOtherAccount:      "Usar otra cuenta",
	},
}
