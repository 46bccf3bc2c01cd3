package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/smtp"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ContactMessage is a POST /contact submission.
type ContactMessage struct {
	Name    string `json:"name" form:"fullName" binding:"required,max=200"`
	Email   string `json:"email" form:"email" binding:"required,email"`
	Message string `json:"message" form:"message" binding:"required,max=5000"`
}

// Mailer delivers contact form submissions.
type Mailer interface {
	Send(ctx context.Context, msg ContactMessage) error
}

// SMTPMailer relays submissions through an authenticated SMTP server.
type SMTPMailer struct {
	Host string
	Port string
	User string
	Pass string
	To   string // defaults to User
}

func (m SMTPMailer) Send(ctx context.Context, msg ContactMessage) error {
	if m.User == "" || m.Pass == "" {
		return fmt.Errorf("SMTP credentials not configured")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	to := m.To
	if to == "" {
		to = m.User
	}
	auth := smtp.PlainAuth("", m.User, m.Pass, m.Host)
	if err := smtp.SendMail(net.JoinHostPort(m.Host, m.Port), auth, m.User, []string{to}, m.compose(to, msg)); err != nil {
		return fmt.Errorf("sending contact email: %w", err)
	}
	return nil
}

func (m SMTPMailer) compose(to string, msg ContactMessage) []byte {
	// header injection guard; the body is free text
	clean := strings.NewReplacer("\r", " ", "\n", " ")
	subject := "Portfolio Contact: " + clean.Replace(msg.Name)
	body := fmt.Sprintf("New contact form submission from the terminal portfolio:\r\n\r\n"+
		"Name: %s\r\nEmail: %s\r\nMessage:\r\n%s\r\n",
		clean.Replace(msg.Name), clean.Replace(msg.Email), msg.Message)
	return []byte("From: " + m.User + "\r\n" +
		"To: " + to + "\r\n" +
		"Reply-To: " + clean.Replace(msg.Email) + "\r\n" +
		"Subject: " + subject + "\r\n" +
		"\r\n" + body)
}

func (s *Server) handleContact(c *gin.Context) {
	if s.mailer == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Contact form is not configured"})
		return
	}
	var msg ContactMessage
	if err := c.ShouldBind(&msg); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid contact form", "details": err.Error()})
		return
	}
	if err := s.mailer.Send(c.Request.Context(), msg); err != nil {
		s.logger.Error("contact email failed", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{
			"error": "Sorry, there was an error sending your message. Please try again later.",
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Thank you for your message! I'll get back to you soon."})
}
