package security

import (
	"fmt"
	"net"
	"net/http"
	"net/netip"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/doyensec/safeurl"
)

// SSRFGuardService は外部への通信先を検証するインターフェース。
// YouTube APIとチャンネルフィードへのリクエスト、およびAPI応答に含まれる
// サムネイルURLの検証に使用する。
type SSRFGuardService interface {
	// NewSafeClient はプライベートアドレスへの接続を拒否するHTTPクライアントを生成する。
	// 接続時にDNS解決後のIPアドレスも検証する。
	NewSafeClient(timeout time.Duration) *http.Client

	// ValidateURL はURLのスキームとホストを静的に検証する。
	ValidateURL(rawURL string) error

	// ValidateImageURL はブラウザに返す画像URLを検証する。httpsのみ許可する。
	ValidateImageURL(rawURL string) error
}

var (
	allowedSchemes = []string{"http", "https"}
	imageSchemes   = []string{"https"}
)

// blockedPrefixes はDNS解決なしで拒否するアドレス範囲。
var blockedPrefixes = []netip.Prefix{
	netip.MustParsePrefix("10.0.0.0/8"),
	netip.MustParsePrefix("172.16.0.0/12"),
	netip.MustParsePrefix("192.168.0.0/16"),
	netip.MustParsePrefix("127.0.0.0/8"),
	netip.MustParsePrefix("169.254.0.0/16"), // クラウドメタデータIPを含む
	netip.MustParsePrefix("0.0.0.0/8"),
	netip.MustParsePrefix("::1/128"),
	netip.MustParsePrefix("fe80::/10"),
	netip.MustParsePrefix("fc00::/7"),
}

var blockedHostnames = []string{"localhost"}

// ssrfGuard はSSRFGuardServiceの実装。
type ssrfGuard struct{}

// NewSSRFGuard はSSRFGuardServiceの新しいインスタンスを生成する。
func NewSSRFGuard() *ssrfGuard {
	return &ssrfGuard{}
}

// NewSafeClient はsafeurlでラップしたHTTPクライアントを生成する。
// 許可するポートは80と443のみ。
func (g *ssrfGuard) NewSafeClient(timeout time.Duration) *http.Client {
	config := safeurl.GetConfigBuilder().
		SetTimeout(timeout).
		SetAllowedSchemes(allowedSchemes...).
		SetAllowedPorts(80, 443).
		Build()

	return safeurl.Client(config).Client
}

// ValidateURL はURLのスキームとホストを静的に検証する。
// DNS再バインディングはNewSafeClient側のDialer検証で防ぐ。
func (g *ssrfGuard) ValidateURL(rawURL string) error {
	return validate(rawURL, allowedSchemes)
}

// ValidateImageURL はブラウザに返す画像URLを検証する。
func (g *ssrfGuard) ValidateImageURL(rawURL string) error {
	return validate(rawURL, imageSchemes)
}

func validate(rawURL string, schemes []string) error {
	if rawURL == "" {
		return fmt.Errorf("empty URL")
	}

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}

	scheme := strings.ToLower(parsed.Scheme)
	if !slices.Contains(schemes, scheme) {
		return fmt.Errorf("disallowed scheme: %q (allowed: %v)", scheme, schemes)
	}

	host := parsed.Hostname()
	if host == "" {
		return fmt.Errorf("empty host in URL: %s", rawURL)
	}

	if ip := net.ParseIP(host); ip != nil {
		addr, _ := netip.AddrFromSlice(ip)
		addr = addr.Unmap()
		for _, p := range blockedPrefixes {
			if p.Contains(addr) {
				return fmt.Errorf("blocked IP address: %s", addr)
			}
		}
		return nil
	}

	if slices.Contains(blockedHostnames, strings.ToLower(host)) {
		return fmt.Errorf("blocked host: %s", host)
	}
	return nil
}
