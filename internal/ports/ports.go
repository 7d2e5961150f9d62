// Package ports resolves free-text origin/destination names to known
// seaports and recognizes country-level answers that still need a
// specific port. The directory loads from a YAML file or S3 object.
package ports

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"gopkg.in/yaml.v3"

	"github.com/ignite/freightdesk/internal/agents"
)

// Port is one directory entry.
type Port struct {
	Name    string   `yaml:"name" json:"port_name"`
	Code    string   `yaml:"code" json:"port_code"`
	Country string   `yaml:"country" json:"country"`
	Aliases []string `yaml:"aliases,omitempty" json:"-"`
}

// Lookup is the enrichment result for one name.
type Lookup struct {
	PortName  string `json:"port_name"`
	PortCode  string `json:"port_code"`
	Country   string `json:"country"`
	IsCountry bool   `json:"is_country"`
	Found     bool   `json:"found"`
}

// Directory indexes ports by name, alias, and code, plus a country set
// for is_country detection.
type Directory struct {
	byKey     map[string]Port
	countries map[string]string // normalized name -> display name
}

type directoryFile struct {
	Ports     []Port   `yaml:"ports"`
	Countries []string `yaml:"countries"`
}

// NewDirectory builds an index over the given ports and country names.
func NewDirectory(ports []Port, countries []string) *Directory {
	d := &Directory{
		byKey:     map[string]Port{},
		countries: map[string]string{},
	}
	for _, p := range ports {
		d.byKey[normalize(p.Name)] = p
		if p.Code != "" {
			d.byKey[normalize(p.Code)] = p
		}
		for _, alias := range p.Aliases {
			d.byKey[normalize(alias)] = p
		}
	}
	for _, c := range countries {
		d.countries[normalize(c)] = c
	}
	return d
}

// LoadFile reads a YAML directory from disk.
func LoadFile(path string) (*Directory, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("ports: opening directory: %w", err)
	}
	defer f.Close()
	return decode(f)
}

// LoadS3 fetches the YAML directory from an S3 object.
func LoadS3(ctx context.Context, bucket, key, region string) (*Directory, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("ports: loading AWS config: %w", err)
	}
	client := s3.NewFromConfig(cfg)
	out, err := client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("ports: fetching s3://%s/%s: %w", bucket, key, err)
	}
	defer out.Body.Close()
	return decode(out.Body)
}

func decode(r io.Reader) (*Directory, error) {
	var file directoryFile
	if err := yaml.NewDecoder(r).Decode(&file); err != nil {
		return nil, fmt.Errorf("ports: decoding directory: %w", err)
	}
	return NewDirectory(file.Ports, file.Countries), nil
}

// Resolve maps a free-text name to a directory entry. Country names
// resolve with IsCountry set; unknown names come back not-found with the
// input echoed, so downstream validation treats them as port-level.
func (d *Directory) Resolve(name string) Lookup {
	key := normalize(name)
	if key == "" {
		return Lookup{}
	}
	if p, ok := d.byKey[key]; ok {
		return Lookup{PortName: p.Name, PortCode: p.Code, Country: p.Country, Found: true}
	}
	if display, ok := d.countries[key]; ok {
		return Lookup{PortName: display, Country: display, IsCountry: true, Found: true}
	}
	return Lookup{PortName: name}
}

// Collaborator exposes the directory in the workflow's request/response
// shape.
func (d *Directory) Collaborator() agents.Collaborator {
	return agents.Func(func(_ context.Context, req map[string]any) (map[string]any, error) {
		name, _ := req["port_name"].(string)
		l := d.Resolve(name)
		return map[string]any{
			"port_name":  l.PortName,
			"port_code":  l.PortCode,
			"country":    l.Country,
			"is_country": l.IsCountry,
			"found":      l.Found,
		}, nil
	})
}

func normalize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.TrimSuffix(s, " port")
	s = strings.TrimPrefix(s, "port of ")
	return strings.Join(strings.Fields(s), " ")
}

// Builtin returns a starter directory covering the major trade lanes;
// deployments override it with the full file from configuration.
func Builtin() *Directory {
	return NewDirectory([]Port{
		{Name: "Shanghai", Code: "CNSHA", Country: "China"},
		{Name: "Ningbo", Code: "CNNGB", Country: "China"},
		{Name: "Shenzhen", Code: "CNSZX", Country: "China", Aliases: []string{"yantian"}},
		{Name: "Qingdao", Code: "CNTAO", Country: "China"},
		{Name: "Singapore", Code: "SGSIN", Country: "Singapore"},
		{Name: "Busan", Code: "KRPUS", Country: "South Korea", Aliases: []string{"pusan"}},
		{Name: "Rotterdam", Code: "NLRTM", Country: "Netherlands"},
		{Name: "Antwerp", Code: "BEANR", Country: "Belgium"},
		{Name: "Hamburg", Code: "DEHAM", Country: "Germany"},
		{Name: "Felixstowe", Code: "GBFXT", Country: "United Kingdom"},
		{Name: "Los Angeles", Code: "USLAX", Country: "United States", Aliases: []string{"la"}},
		{Name: "Long Beach", Code: "USLGB", Country: "United States"},
		{Name: "New York", Code: "USNYC", Country: "United States", Aliases: []string{"new york/new jersey"}},
		{Name: "Savannah", Code: "USSAV", Country: "United States"},
		{Name: "Oakland", Code: "USOAK", Country: "United States"},
		{Name: "Houston", Code: "USHOU", Country: "United States"},
		{Name: "Jebel Ali", Code: "AEJEA", Country: "United Arab Emirates", Aliases: []string{"dubai"}},
		{Name: "Nhava Sheva", Code: "INNSA", Country: "India", Aliases: []string{"jnpt", "mumbai"}},
		{Name: "Santos", Code: "BRSSZ", Country: "Brazil"},
		{Name: "Valencia", Code: "ESVLC", Country: "Spain"},
	}, []string{
		"China", "United States", "USA", "India", "Germany", "Netherlands",
		"Belgium", "United Kingdom", "UK", "Singapore", "South Korea",
		"Brazil", "Spain", "United Arab Emirates", "Vietnam", "Japan",
		"Mexico", "Canada", "Australia", "France", "Italy",
	})
}
