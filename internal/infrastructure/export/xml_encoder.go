package export

import (
	"bytes"
	"crypto/sha256"
	"encoding/base64"
	"encoding/xml"
	"fmt"
	"strconv"
	"time"

	"github.com/beevik/etree"
	"github.com/ucarion/c14n"

	"github.com/jhoicas/Importaciones-api/internal/application/document"
)

var _ document.XMLEncoder = (*XMLEncoder)(nil)

const (
	// NsImport namespace del XML de exportación.
	NsImport = "urn:importaciones:document:v1"
	// AlgC14N algoritmo de canonicalización usado para el digest.
	AlgC14N = "http://www.w3.org/TR/2001/REC-xml-c14n-20010315"
)

// XMLEncoder serializa la ficha de un documento:
//
//	<ImportDocument xmlns="urn:importaciones:document:v1">
//	  <Data>...</Data>
//	  <Digest Algorithm="sha256" Canonicalization="...c14n...">base64</Digest>
//	</ImportDocument>
//
// El digest es SHA-256 sobre la forma canónica de <Data>. La salida no se indenta: el
// espacio agregado dentro de <Data> cambiaría el digest.
type XMLEncoder struct{}

// NewXMLEncoder construye el encoder.
func NewXMLEncoder() *XMLEncoder { return &XMLEncoder{} }

func (e *XMLEncoder) EncodeDocument(sheet document.DocumentSheet) ([]byte, error) {
	if sheet.Document == nil {
		return nil, fmt.Errorf("xml: documento requerido")
	}
	d := sheet.Document

	data := etree.NewElement("Data")
	data.CreateAttr("xmlns", NsImport)
	data.CreateAttr("Id", d.ID)

	hdr := data.CreateElement("Header")
	hdr.CreateElement("DocumentNumber").SetText(d.DocumentNumber)
	hdr.CreateElement("DocumentType").SetText(d.DocumentType)
	hdr.CreateElement("Status").SetText(d.Status)
	hdr.CreateElement("Priority").SetText(d.Priority)
	hdr.CreateElement("DocumentDate").SetText(d.DocumentDate.Format("2006-01-02"))
	hdr.CreateElement("CreatedAt").SetText(d.CreatedAt.UTC().Format(time.RFC3339))

	sup := data.CreateElement("Supplier")
	sup.CreateElement("Name").SetText(d.SupplierName)

	val := data.CreateElement("Value")
	val.CreateAttr("currency", d.Currency)
	val.SetText(d.DocumentValue.StringFixed(2))

	people := data.CreateElement("Responsible")
	cb := people.CreateElement("CreatedBy")
	cb.CreateAttr("id", d.CreatedBy)
	cb.SetText(sheet.CreatedByName)
	if d.ApproverID != "" {
		ap := people.CreateElement("Approver")
		ap.CreateAttr("id", d.ApproverID)
		ap.SetText(sheet.ApproverName)
	}

	if d.Remarks != "" {
		data.CreateElement("Remarks").SetText(d.Remarks)
	}
	if d.RejectionReason != "" {
		data.CreateElement("RejectionReason").SetText(d.RejectionReason)
	}

	hist := data.CreateElement("History")
	for _, h := range sheet.History {
		entry := hist.CreateElement("Entry")
		entry.CreateAttr("action", h.ActionType)
		if h.OldStatus != "" {
			entry.CreateAttr("from", h.OldStatus)
		}
		entry.CreateAttr("to", h.NewStatus)
		entry.CreateAttr("by", h.PerformedBy)
		entry.CreateAttr("at", h.CreatedAt.UTC().Format(time.RFC3339))
		if h.Remarks != "" {
			entry.SetText(h.Remarks)
		}
	}

	files := data.CreateElement("Attachments")
	for _, f := range sheet.Files {
		a := files.CreateElement("File")
		a.CreateAttr("name", f.FileName)
		a.CreateAttr("type", f.FileType)
		a.CreateAttr("size", strconv.FormatInt(f.FileSize, 10))
	}

	digest, err := DigestData(data)
	if err != nil {
		return nil, err
	}

	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)
	root := doc.CreateElement("ImportDocument")
	root.CreateAttr("xmlns", NsImport)
	root.CreateAttr("generatedAt", sheet.GeneratedAt.UTC().Format(time.RFC3339))
	root.AddChild(data)
	dg := root.CreateElement("Digest")
	dg.CreateAttr("Algorithm", "sha256")
	dg.CreateAttr("Canonicalization", AlgC14N)
	dg.SetText(digest)

	var out bytes.Buffer
	if _, err := doc.WriteTo(&out); err != nil {
		return nil, fmt.Errorf("xml: escribir: %w", err)
	}
	return out.Bytes(), nil
}

// DigestData SHA-256 en base64 de la forma canónica (C14N) del elemento.
func DigestData(el *etree.Element) (string, error) {
	tmp := etree.NewDocument()
	tmp.SetRoot(el.Copy())
	raw, err := tmp.WriteToBytes()
	if err != nil {
		return "", fmt.Errorf("xml: serializar para digest: %w", err)
	}
	dec := xml.NewDecoder(bytes.NewReader(raw))
	dec.Entity = map[string]string{}
	canonical, err := c14n.Canonicalize(dec)
	if err != nil {
		return "", fmt.Errorf("xml: canonicalizar: %w", err)
	}
	sum := sha256.Sum256(canonical)
	return base64.StdEncoding.EncodeToString(sum[:]), nil
}
