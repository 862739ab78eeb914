package models

import "time"

// User はユーザーのデータベース構造体を表します。
// JSONタグ: クライアントとの通信用
// bindingタグ: Ginでのリクエストバリデーション用
type User struct {
	ID           string    `json:"id" firestore:"id"`
	Name         string    `json:"name" firestore:"name"`
	Email        string    `json:"email" firestore:"email"`
	PasswordHash string    `json:"-" firestore:"passwordHash"` // JSONに出さない
	CreatedAt    time.Time `json:"createdAt" firestore:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt" firestore:"updatedAt"`
}

type UserRegisterRequest struct {
	Name     string `json:"name" binding:"required,notblank,max=255" sanitize:"trim" msg:"Name is required" msg_max:"Name must be at most 255 characters"`
	Email    string `json:"email" binding:"required,email,max=255" sanitize:"trim" msg:"A valid email is required" msg_max:"Email must be at most 255 characters"`
	Password string `json:"password" binding:"required,min=8,max=72" msg:"Password must be at least 8 characters" msg_max:"Password must be at most 72 characters"` // 生パスワード (bcryptは72バイトまで)
}

type UserLoginRequest struct {
	Email    string `json:"email" binding:"required,email" sanitize:"trim" msg:"A valid email is required"`
	Password string `json:"password" binding:"required" msg:"Password is required"` // 生パスワード
}

// LoginResponse はログイン成功時のレスポンスです。
type LoginResponse struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}

// JWTClaims はトークンから取り出した認証情報です。
type JWTClaims struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
}
