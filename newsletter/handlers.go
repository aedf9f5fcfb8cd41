package newsletter

import (
	"crypto/subtle"
	"encoding/csv"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
)

const (
	msgSubscribed        = "Thank you for subscribing! Look out for our insights in your inbox."
	msgAlreadySubscribed = "You are already subscribed!"
	msgInvalidType       = "Invalid content type"
	msgInvalidEmail      = "Invalid email address"
	msgRateLimited       = "Too many requests. Please try again later."
	msgUnauthorized      = "Unauthorized"
	msgExportFailed      = "An error occurred while fetching subscribers"
)

var errContentType = errors.New("unsupported content type")

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ValidEmail reports whether s looks like an email address.
func ValidEmail(s string) bool {
	return emailPattern.MatchString(s)
}

type errorResponse struct {
	Error string `json:"error"`
}

type messageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type exportResponse struct {
	Success     bool         `json:"success"`
	Count       int          `json:"count"`
	Subscribers []Subscriber `json:"subscribers"`
}

func (a *App) handleSubscribe(c echo.Context) error {
	ip := c.RealIP()
	if !a.limiter.Allow(ip) {
		return c.JSON(http.StatusTooManyRequests, errorResponse{Error: msgRateLimited})
	}

	email, err := readEmail(c)
	if errors.Is(err, errContentType) {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: msgInvalidType})
	}
	if err != nil {
		return err
	}
	if !ValidEmail(email) {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: msgInvalidEmail})
	}

	ctx := c.Request().Context()
	sub, err := a.Store.Get(ctx, email)
	switch {
	case err == nil && !sub.Unsubscribed:
		return c.JSON(http.StatusOK, messageResponse{Success: true, Message: msgAlreadySubscribed})
	case err == nil:
		if err := a.Store.Resubscribe(ctx, email); err != nil {
			a.logger.Error("resubscribe failed", "err", err)
		}
	case errors.Is(err, ErrNotFound):
		if err := a.Store.Add(ctx, email, ip, c.Request().UserAgent()); err != nil {
			a.logger.Error("add subscriber failed", "err", err)
		}
	default:
		a.logger.Error("subscriber lookup failed", "err", err)
	}

	if a.notifier != nil {
		if err := a.notifier.Notify(ctx, Signup{Email: email, IP: ip, At: a.now()}); err != nil {
			a.logger.Error("notification email failed", "err", err)
		}
	}
	return c.JSON(http.StatusOK, messageResponse{Success: true, Message: msgSubscribed})
}

// readEmail extracts the email from a JSON or urlencoded form body. A
// JSON body that does not decode is a server error.
func readEmail(c echo.Context) (string, error) {
	ct := c.Request().Header.Get(echo.HeaderContentType)
	switch {
	case strings.Contains(ct, echo.MIMEApplicationJSON):
		var body struct {
			Email string `json:"email"`
		}
		if err := (&echo.DefaultBinder{}).BindBody(c, &body); err != nil {
			return "", echo.NewHTTPError(http.StatusInternalServerError).SetInternal(err)
		}
		return body.Email, nil
	case strings.Contains(ct, echo.MIMEApplicationForm):
		return c.FormValue("email"), nil
	default:
		return "", errContentType
	}
}

func (a *App) handleSubscribers(c echo.Context) error {
	key := c.QueryParam("key")
	want := a.Config.AdminAPIKey
	if key == "" || want == "" || subtle.ConstantTimeCompare([]byte(key), []byte(want)) != 1 {
		return c.JSON(http.StatusUnauthorized, errorResponse{Error: msgUnauthorized})
	}

	var filter Filter
	params := c.QueryParams()
	if params.Has("confirmed") {
		v := params.Get("confirmed") == "1"
		filter.Confirmed = &v
	}
	if params.Has("unsubscribed") {
		v := params.Get("unsubscribed") == "1"
		filter.Unsubscribed = &v
	}

	subs, err := a.Store.List(c.Request().Context(), filter)
	if err != nil {
		a.logger.Error("list subscribers failed", "err", err)
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: msgExportFailed})
	}

	if c.QueryParam("format") == "csv" {
		return a.writeCSV(c, subs)
	}
	return c.JSONPretty(http.StatusOK, exportResponse{
		Success:     true,
		Count:       len(subs),
		Subscribers: subs,
	}, "  ")
}

var csvHeader = []string{"id", "email", "subscribed_at", "confirmed", "confirmed_at", "unsubscribed", "unsubscribed_at"}

func (a *App) writeCSV(c echo.Context, subs []Subscriber) error {
	filename := fmt.Sprintf("subscribers-%s.csv", a.now().UTC().Format("2006-01-02"))
	res := c.Response()
	res.Header().Set(echo.HeaderContentType, "text/csv")
	res.Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	res.WriteHeader(http.StatusOK)

	w := csv.NewWriter(res)
	if err := w.Write(csvHeader); err != nil {
		return err
	}
	for _, s := range subs {
		row := []string{
			strconv.FormatInt(s.ID, 10),
			s.Email,
			s.SubscribedAt,
			flag(s.Confirmed),
			deref(s.ConfirmedAt),
			flag(s.Unsubscribed),
			deref(s.UnsubscribedAt),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func flag(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
