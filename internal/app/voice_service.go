package app

import (
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/form3tech-oss/jwt-go"

	"mendikot/internal/domain"
)

const (
	VoiceActionLogin = "login"
	VoiceActionJoin  = "join"

	voiceTokenTTL = time.Hour
)

var (
	ErrVoiceConfig  = errors.New("voice config is incomplete")
	ErrVoiceAction  = errors.New("unsupported voice action")
	ErrVoiceChannel = errors.New("channel name is required for join tokens")
)

// VoiceService signs Vivox access tokens for the table and team channels of a match.
type VoiceService struct {
	secret string
	issuer string
	domain string
	now    func() time.Time
}

func NewVoiceService(secret, issuer, domain string) *VoiceService {
	return &VoiceService{
		secret: secret,
		issuer: issuer,
		domain: domain,
		now:    time.Now,
	}
}

// TableChannel is shared by all four seats.
func TableChannel(matchID string) string {
	return sanitizeChannel(matchID)
}

// TeamChannel is private to the two partners of team.
func TeamChannel(matchID string, team domain.Team) string {
	return sanitizeChannel(matchID) + "-" + strings.ToLower(string(team))
}

// Vivox channel names only allow a restricted alphabet; match ids carry a node suffix.
func sanitizeChannel(name string) string {
	return strings.NewReplacer(".", "_", ":", "_").Replace(name)
}

func (s *VoiceService) GenerateToken(user, action, channelName string) (string, error) {
	if s == nil {
		return "", ErrVoiceConfig
	}
	if user == "" {
		return "", fmt.Errorf("user is required")
	}
	if s.secret == "" || s.issuer == "" || s.domain == "" {
		return "", ErrVoiceConfig
	}

	userURI := s.userURI(user)
	targetURI, err := s.targetURI(action, channelName, userURI)
	if err != nil {
		return "", err
	}

	now := s.now()
	claims := jwt.MapClaims{
		"iss": s.issuer,
		"sub": user,
		"exp": now.Add(voiceTokenTTL).Unix(),
		"vxa": action,
		"vxi": fmt.Sprintf("%d-%d", now.UnixNano(), rand.Int63()),
		"f":   userURI,
		"t":   targetURI,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.secret))
}

func (s *VoiceService) userURI(user string) string {
	return "sip:." + s.issuer + "." + user + ".@" + s.domain
}

func (s *VoiceService) channelURI(channelName string) string {
	return "sip:confctl-g-" + channelName + "@" + s.domain
}

func (s *VoiceService) targetURI(action, channelName, userURI string) (string, error) {
	switch action {
	case VoiceActionLogin:
		return userURI, nil
	case VoiceActionJoin:
		if channelName == "" {
			return "", ErrVoiceChannel
		}
		return s.channelURI(channelName), nil
	default:
		return "", fmt.Errorf("%w: %s", ErrVoiceAction, action)
	}
}
