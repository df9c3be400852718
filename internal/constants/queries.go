package constants

const (
	GetUserByEmail = `
	SELECT * FROM users WHERE email = $1
	`

	GetUserByID = `
	SELECT * FROM users WHERE id = $1
	`

	GetConnectionsByUser = `
	SELECT * FROM platform_connections WHERE user_id = $1 AND is_active = true
	`

	GetStatusByApiKey = `
	SELECT id, status FROM api_keys WHERE id = $1
	`
)
