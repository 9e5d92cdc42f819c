package models

import (
	"time"
)

type User struct {
	UserID                 string    `json:"id" db:"user_id"`
	Name                   string    `json:"name" db:"name"`
	Email                  string    `json:"email" db:"email"`
	Avatar                 string    `json:"avatar" db:"avatar"`
	PasswordHash           string    `json:"-" db:"password_hash"`
	RefreshToken           string    `json:"-" db:"refresh_token"`
	RefreshTokenExpiryTime time.Time `json:"-" db:"refresh_token_expiry_time"`
	CreatedAt              time.Time `json:"createdAt" db:"created_at"`
}

type Post struct {
	PostID    string    `json:"id" db:"post_id"`
	Text      string    `json:"text" db:"text"`
	Name      string    `json:"name" db:"name"`
	Avatar    string    `json:"avatar" db:"avatar"`
	UserID    string    `json:"user" db:"user_id"`
	Likes     []Like    `json:"likes" db:"-"`
	Comments  []Comment `json:"comments" db:"-"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// Like is a single user's endorsement of a post.
type Like struct {
	UserID string `json:"user" db:"user_id"`
}

type Comment struct {
	CommentID string    `json:"id" db:"comment_id"`
	Text      string    `json:"text" db:"text"`
	Name      string    `json:"name" db:"name"`
	Avatar    string    `json:"avatar" db:"avatar"`
	UserID    string    `json:"user" db:"user_id"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// HasLike reports whether userID is present in the post's likes.
func (p *Post) HasLike(userID string) bool {
	for _, like := range p.Likes {
		if like.UserID == userID {
			return true
		}
	}
	return false
}

func (p *Post) HasComment(commentID string) bool {
	for _, comment := range p.Comments {
		if comment.CommentID == commentID {
			return true
		}
	}
	return false
}

// Clone returns a deep copy with non-nil likes and comments.
func (p *Post) Clone() *Post {
	cp := *p
	cp.Likes = append(make([]Like, 0, len(p.Likes)), p.Likes...)
	cp.Comments = append(make([]Comment, 0, len(p.Comments)), p.Comments...)
	return &cp
}
