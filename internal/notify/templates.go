package notify

import "html/template"

var recruiterTemplate = template.Must(template.New("recruiter").Parse(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h2 style="color: #0A1628;">New Job Application</h2>
  <div style="background-color: #f3f4f6; padding: 20px; border-radius: 8px; margin: 20px 0;">
    <h3 style="color: #0A1628; margin-top: 0;">Position Applied For</h3>
    <p style="font-size: 18px; font-weight: bold; color: #0A1628;">{{.JobTitle}}</p>
    <p style="color: #6b7280; font-size: 14px;">Job ID: {{.JobID}}</p>
  </div>
  <h3 style="color: #0A1628;">Candidate Information</h3>
  <table style="width: 100%; border-collapse: collapse;">
    <tr><td style="padding: 12px 0; font-weight: bold; color: #4b5563;">Name:</td><td style="padding: 12px 0;">{{.FullName}}</td></tr>
    <tr><td style="padding: 12px 0; font-weight: bold; color: #4b5563;">Email:</td><td style="padding: 12px 0;"><a href="mailto:{{.Email}}">{{.Email}}</a></td></tr>
    {{- if .Phone}}
    <tr><td style="padding: 12px 0; font-weight: bold; color: #4b5563;">Phone:</td><td style="padding: 12px 0;">{{.Phone}}</td></tr>
    {{- end}}
    {{- if .Location}}
    <tr><td style="padding: 12px 0; font-weight: bold; color: #4b5563;">Location:</td><td style="padding: 12px 0;">{{.Location}}</td></tr>
    {{- end}}
    {{- if .LinkedinURL}}
    <tr><td style="padding: 12px 0; font-weight: bold; color: #4b5563;">LinkedIn:</td><td style="padding: 12px 0;"><a href="{{.LinkedinURL}}">{{.LinkedinURL}}</a></td></tr>
    {{- end}}
    {{- if .PortfolioURL}}
    <tr><td style="padding: 12px 0; font-weight: bold; color: #4b5563;">Portfolio:</td><td style="padding: 12px 0;"><a href="{{.PortfolioURL}}">{{.PortfolioURL}}</a></td></tr>
    {{- end}}
  </table>
  {{- if .AdditionalInfo}}
  <h3 style="color: #0A1628; margin-top: 30px;">Additional Information</h3>
  <div style="background-color: #f9fafb; padding: 15px; border-left: 4px solid #0A1628;">
    <p style="margin: 0; white-space: pre-wrap;">{{.AdditionalInfo}}</p>
  </div>
  {{- end}}
  {{- if .HasCV}}
  <div style="margin-top: 30px; padding: 15px; background-color: #ecfdf5; border-radius: 8px;">
    <p style="margin: 0; color: #065f46; font-size: 14px;"><strong>&#10003;</strong> CV/Resume is attached to this email</p>
  </div>
  {{- end}}
  {{- if .WantBoost}}
  <p style="color: #92400e;">The candidate asked to boost this application.</p>
  {{- end}}
  <div style="margin-top: 30px; padding-top: 20px; border-top: 1px solid #e5e7eb; color: #6b7280; font-size: 12px;">
    <p>Application submitted: {{.SubmittedAt}}</p>
    <p>Application ID: {{.ApplicationID}}</p>
    <p>Candidate consented to privacy policy: Yes</p>
  </div>
</div>`))

var candidateTemplate = template.Must(template.New("candidate").Parse(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h2 style="color: #0A1628;">Application Received</h2>
  <p>Dear {{.FullName}},</p>
  <p>Thank you for applying for the <strong>{{.JobTitle}}</strong> position at {{.CompanyName}}.</p>
  <div style="background-color: #f3f4f6; padding: 20px; border-radius: 8px; margin: 20px 0;">
    <h3 style="color: #0A1628; margin-top: 0;">What Happens Next?</h3>
    <ul style="line-height: 1.8;">
      <li><strong>Review:</strong> Our recruitment team will carefully review your application (typically 3-5 business days)</li>
      <li><strong>Assessment:</strong> If your profile matches our requirements, we'll contact you to discuss the next steps</li>
      <li><strong>Interview:</strong> Shortlisted candidates will be invited for an interview</li>
      <li><strong>Decision:</strong> We'll keep you informed throughout the process</li>
    </ul>
  </div>
  <div style="background-color: #ecfdf5; padding: 15px; border-radius: 8px;">
    <p style="margin: 0; color: #065f46;">
      <strong>Your application details:</strong><br>
      Position: {{.JobTitle}}<br>
      Submitted: {{.SubmittedAt}}
    </p>
  </div>
  <p style="margin-top: 30px;">If you have any questions, please don't hesitate to contact us at
    <a href="mailto:{{.RecruitEmail}}">{{.RecruitEmail}}</a>.</p>
  <p>Best regards,<br><strong>{{.CompanyName}} Recruitment Team</strong></p>
  <div style="margin-top: 30px; padding-top: 20px; border-top: 1px solid #e5e7eb; color: #6b7280; font-size: 12px;">
    <p>This is an automated confirmation. Please do not reply to this email.</p>
  </div>
</div>`))
