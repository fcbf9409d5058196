package fetch

import (
	"net/url"
	"strings"
)

// Platform represents a known job board.
type Platform string

// Known platforms
const (
	PlatformBoss       Platform = "zhipin"
	PlatformLagou      Platform = "lagou"
	PlatformLiepin     Platform = "liepin"
	PlatformJob51      Platform = "51job"
	PlatformGreenhouse Platform = "greenhouse"
	PlatformLever      Platform = "lever"
	PlatformUnknown    Platform = "unknown"
)

var platformHosts = []struct {
	suffix   string
	platform Platform
}{
	{"zhipin.com", PlatformBoss},
	{"lagou.com", PlatformLagou},
	{"liepin.com", PlatformLiepin},
	{"51job.com", PlatformJob51},
	{"greenhouse.io", PlatformGreenhouse},
	{"lever.co", PlatformLever},
}

// DetectPlatform identifies the job board from a URL's host.
func DetectPlatform(urlStr string) Platform {
	parsed, err := url.Parse(urlStr)
	if err != nil {
		return PlatformUnknown
	}
	host := strings.ToLower(parsed.Hostname())
	for _, h := range platformHosts {
		if host == h.suffix || strings.HasSuffix(host, "."+h.suffix) {
			return h.platform
		}
	}
	return PlatformUnknown
}

// PlatformContentSelectors returns content selectors for a platform, most
// specific first.
func PlatformContentSelectors(platform Platform) []string {
	switch platform {
	case PlatformBoss:
		return []string{".job-sec-text", ".job-detail-section", ".job-detail"}
	case PlatformLagou:
		return []string{".job-detail", ".job_bt", "#job_detail"}
	case PlatformLiepin:
		return []string{".job-intro-container", "[data-selector='job-intro-content']", ".job-description"}
	case PlatformJob51:
		return []string{".bmsg.job_msg", ".job_msg", ".tBorderTop_box"}
	case PlatformGreenhouse:
		return []string{".job__description.body", ".job__description", "#content"}
	case PlatformLever:
		return []string{".posting-page", ".section-wrapper.page-full-width", ".content"}
	default:
		return JobPostingSelectors()
	}
}

// PlatformNoiseSelectors returns selectors removed before extraction.
func PlatformNoiseSelectors(platform Platform) []string {
	common := []string{
		"form",
		".apply-button-container",
		".application-form",
		".share-buttons",
		".social-share",
		".cookie-consent",
		".login-dialog",
		".qr-code",
	}

	switch platform {
	case PlatformBoss:
		return append(common, ".job-boss-info", ".sider-company", ".job-op")
	case PlatformLagou:
		return append(common, ".job_company", ".resume-deliver")
	case PlatformLiepin:
		return append(common, ".job-apply-container", ".company-card")
	case PlatformJob51:
		return append(common, ".mt10", ".share")
	case PlatformGreenhouse:
		return append(common, ".application--wrapper", "#usa_self_id_section")
	case PlatformLever:
		return append(common, ".posting-apply", ".lever-application-form")
	default:
		return common
	}
}
