package service

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/beevik/etree"
	"github.com/sirupsen/logrus"

	"pawnshop-service/configs"
	"pawnshop-service/internal/repository"
)

// CBRResponse represents the XML response from Central Bank of Russia
type CBRResponse struct {
	XMLName xml.Name `xml:"envelope"`
	Body    struct {
		XMLName     xml.Name `xml:"Body"`
		GetRateResp struct {
			XMLName xml.Name `xml:"GetCursOnDateXMLResponse"`
			Result  struct {
				XMLName xml.Name `xml:"GetCursOnDateXMLResult"`
				Rates   string   `xml:",innerxml"`
			}
		}
	}
}

// RateSvc is an implementation of the service.RateService interface. It
// fetches the central-bank key rate used to default interest rates at loan
// origination.
type RateSvc struct {
	logger *logrus.Logger
	config *configs.Config
	repos  *repository.Repository
}

// NewRateService creates a new RateSvc
func NewRateService(deps Dependencies) *RateSvc {
	return &RateSvc{
		logger: deps.Logger,
		config: deps.Config,
		repos:  deps.Repos,
	}
}

// GetKeyRate gets the key interest rate from Central Bank of Russia
func (s *RateSvc) GetKeyRate(ctx context.Context) (float64, error) {
	soapEnvelope := `
	<soapenv:Envelope xmlns:soapenv="http://schemas.xmlsoap.org/soap/envelope/" xmlns:web="http://web.cbr.ru/">
		<soapenv:Header/>
		<soapenv:Body>
			<web:GetCursOnDateXML>
				<web:On_date>` + time.Now().Format("2006-01-02") + `</web:On_date>
			</web:GetCursOnDateXML>
		</soapenv:Body>
	</soapenv:Envelope>`

	req, err := http.NewRequestWithContext(ctx, "POST", s.config.CBR.APIURL, strings.NewReader(soapEnvelope))
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "text/xml; charset=utf-8")
	req.Header.Set("SOAPAction", "http://web.cbr.ru/GetCursOnDateXML")

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, fmt.Errorf("failed to read response: %w", err)
	}

	var cbrResp CBRResponse
	err = xml.Unmarshal(body, &cbrResp)
	if err != nil {
		return 0, fmt.Errorf("failed to parse XML response: %w", err)
	}

	// Use etree to parse the inner XML content
	doc := etree.NewDocument()
	err = doc.ReadFromString(cbrResp.Body.GetRateResp.Result.Rates)
	if err != nil {
		return 0, fmt.Errorf("failed to parse rate data: %w", err)
	}

	// Find the key rate element (usually has ID R01010 for CBR key rate)
	keyRateElem := doc.FindElement("//ValCurs/Valute[@ID='R01010']")
	if keyRateElem == nil {
		return 0, errors.New("key rate element not found in response")
	}

	valueElem := keyRateElem.FindElement("Value")
	if valueElem == nil {
		return 0, errors.New("value element not found in key rate")
	}

	// Parse the value string to float (replace comma with dot)
	var keyRate float64
	valueStr := strings.Replace(valueElem.Text(), ",", ".", 1)
	_, err = fmt.Sscanf(valueStr, "%f", &keyRate)
	if err != nil {
		return 0, fmt.Errorf("failed to parse key rate value: %w", err)
	}

	s.logger.Infof("Retrieved key rate from CBR: %f%%", keyRate)

	return keyRate, nil
}
