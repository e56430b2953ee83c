package ingest

// TemplateFilename is the name offered to the browser for the template download.
const TemplateFilename = "factory_data_template.csv"

const template = `type,time,units,efficiency,energy
production,00:00,45,92,85
type,category,count
defect,Assembly,12
type,name,value
quality,Excellent,65
type,date,preventive,corrective
maintenance,Mon,4,1
`

// Template returns the fixed example file. It does not reflect the current data.
func Template() string {
	return template
}
