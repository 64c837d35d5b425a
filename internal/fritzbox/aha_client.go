package fritzbox

import (
	"context"
	"crypto/md5"
	"encoding/binary"
	"encoding/hex"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
	"unicode/utf16"
)

const (
	loginPath = "/login_sid.lua"
	ahaPath   = "/webservices/homeautoswitch.lua"

	// The box reports this SID when authentication failed.
	emptySID = "0000000000000000"

	defaultTimeout = 10 * time.Second

	// HKR tsoll wire units are half degrees; 253/254 are the off/on codes.
	hkrUnitsMin = 16  // 8 °C
	hkrUnitsMax = 56  // 28 °C
	hkrOff      = 253 // reads back as 253/2 = 126.5 °C
	hkrOn       = 254
)

var (
	ErrNotLoggedIn = errors.New("fritzbox: not logged in")
	ErrAuthFailed  = errors.New("fritzbox: authentication failed")
)

// AHAClient implements Client against a real FRITZ!Box.
type AHAClient struct {
	baseURL  string
	user     string
	password string
	http     *http.Client
	sid      string
}

func NewAHAClient(host, user, password string, timeout time.Duration) *AHAClient {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	base := host
	if !strings.Contains(base, "://") {
		base = "http://" + base
	}
	return &AHAClient{
		baseURL:  strings.TrimRight(base, "/"),
		user:     user,
		password: password,
		http:     &http.Client{Timeout: timeout},
	}
}

var _ Client = (*AHAClient)(nil)

type sessionInfo struct {
	XMLName   xml.Name `xml:"SessionInfo"`
	SID       string   `xml:"SID"`
	Challenge string   `xml:"Challenge"`
	BlockTime int      `xml:"BlockTime"`
}

type deviceList struct {
	XMLName xml.Name    `xml:"devicelist"`
	Devices []xmlDevice `xml:"device"`
}

type xmlDevice struct {
	Identifier string  `xml:"identifier,attr"`
	Name       string  `xml:"name"`
	HKR        *xmlHKR `xml:"hkr"`
}

type xmlHKR struct {
	TSoll string `xml:"tsoll"`
}

// Login performs the challenge-response handshake and stores the session id.
func (c *AHAClient) Login(ctx context.Context) error {
	var session sessionInfo
	if err := c.getXML(ctx, loginPath, nil, &session); err != nil {
		return fmt.Errorf("fritzbox: fetch challenge: %w", err)
	}
	if session.SID != "" && session.SID != emptySID {
		c.sid = session.SID
		return nil
	}

	params := url.Values{
		"username": {c.user},
		"response": {challengeResponse(session.Challenge, c.password)},
	}
	if err := c.getXML(ctx, loginPath, params, &session); err != nil {
		return fmt.Errorf("fritzbox: login: %w", err)
	}
	if session.SID == "" || session.SID == emptySID {
		return ErrAuthFailed
	}
	c.sid = session.SID
	return nil
}

// GetDevices fetches the hub device list. Requires a prior Login.
func (c *AHAClient) GetDevices(ctx context.Context) ([]Device, error) {
	if c.sid == "" {
		return nil, ErrNotLoggedIn
	}
	params := url.Values{
		"switchcmd": {"getdevicelistinfos"},
		"sid":       {c.sid},
	}
	var list deviceList
	if err := c.getXML(ctx, ahaPath, params, &list); err != nil {
		return nil, fmt.Errorf("fritzbox: get device list: %w", err)
	}

	out := make([]Device, 0, len(list.Devices))
	for _, d := range list.Devices {
		dev := Device{
			AIN:           d.Identifier,
			Name:          d.Name,
			HasThermostat: d.HKR != nil,
		}
		if d.HKR != nil {
			dev.TargetTemperature = decodeTSoll(d.HKR.TSoll)
		}
		out = append(out, dev)
	}
	return out, nil
}

// SetTargetTemperature issues a sethkrtsoll command. Requires a prior Login.
func (c *AHAClient) SetTargetTemperature(ctx context.Context, ain string, temperature float64) error {
	if c.sid == "" {
		return ErrNotLoggedIn
	}
	params := url.Values{
		"switchcmd": {"sethkrtsoll"},
		"ain":       {ain},
		"param":     {strconv.Itoa(encodeTSoll(temperature))},
		"sid":       {c.sid},
	}
	if _, err := c.get(ctx, ahaPath, params); err != nil {
		return fmt.Errorf("fritzbox: set target temperature for %q: %w", ain, err)
	}
	return nil
}

// decodeTSoll maps wire units to °C. The off code 253 deliberately maps to
// 126.5, which is the sentinel the rest of the system normalizes against.
func decodeTSoll(raw string) float64 {
	units, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0
	}
	return float64(units) / 2
}

// encodeTSoll maps °C to wire units. Anything below the valid HKR range is
// sent as "off"; the on/off codes pass through unchanged.
func encodeTSoll(temperature float64) int {
	units := int(math.Round(temperature * 2))
	switch {
	case units == hkrOff || units == hkrOn:
		return units
	case units < hkrUnitsMin:
		return hkrOff
	case units > hkrUnitsMax:
		return hkrUnitsMax
	default:
		return units
	}
}

// challengeResponse computes challenge-md5(utf16le(challenge-password)).
func challengeResponse(challenge, password string) string {
	payload := utf16leBytes(challenge + "-" + password)
	sum := md5.Sum(payload)
	return challenge + "-" + hex.EncodeToString(sum[:])
}

func utf16leBytes(s string) []byte {
	codes := utf16.Encode([]rune(s))
	buf := make([]byte, 2*len(codes))
	for i, c := range codes {
		binary.LittleEndian.PutUint16(buf[2*i:], c)
	}
	return buf
}

func (c *AHAClient) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}
	return io.ReadAll(resp.Body)
}

func (c *AHAClient) getXML(ctx context.Context, path string, params url.Values, dst any) error {
	body, err := c.get(ctx, path, params)
	if err != nil {
		return err
	}
	return xml.Unmarshal(body, dst)
}
